package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"starter-server/internal/schemas"
)

// MockMailManager is a mock of the MailManager recording every mail the services send.
type MockMailManager struct {
	mock.Mock
}

func (m *MockMailManager) SendWelcomeMail(ctx context.Context, recipient *schemas.User) error {
	args := m.Called(ctx, recipient)
	return args.Error(0)
}

func (m *MockMailManager) SendVerifyEmailMail(ctx context.Context, recipient *schemas.User, link string) error {
	args := m.Called(ctx, recipient, link)
	return args.Error(0)
}

func (m *MockMailManager) SendPasswordResetMail(ctx context.Context, recipient *schemas.User, link string) error {
	args := m.Called(ctx, recipient, link)
	return args.Error(0)
}

// NewAcceptingMailManager returns a MockMailManager accepting every mail.
func NewAcceptingMailManager() *MockMailManager {
	mailMgrMock := &MockMailManager{}
	mailMgrMock.On("SendWelcomeMail", mock.Anything, mock.Anything).Return(nil)
	mailMgrMock.On("SendVerifyEmailMail", mock.Anything, mock.Anything, mock.AnythingOfType("string")).Return(nil)
	mailMgrMock.On("SendPasswordResetMail", mock.Anything, mock.Anything, mock.AnythingOfType("string")).Return(nil)
	return mailMgrMock
}
