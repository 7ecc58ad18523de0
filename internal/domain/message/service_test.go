package message

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ErlynFabian/WearShop-sub000/internal/infrastructure/tablestore"
)

func newTestMessageService() (*Service, *tablestore.Memory) {
	gw := tablestore.NewMemory()
	return NewService(gw), gw
}

// ============================================
// Phone Validation Tests
// ============================================

func TestValidPhone(t *testing.T) {
	tests := []struct {
		name  string
		phone string
		want  bool
	}{
		{"local format", "09171234567", true},
		{"international with plus", "+639171234567", true},
		{"international without plus", "639171234567", false},
		{"empty is allowed", "", true},
		{"too short", "0917123456", false},
		{"too long", "091712345678", false},
		{"landline prefix", "0281234567", false},
		{"letters", "09b71234567", false},
		{"spaces inside", "0917 123 4567", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidPhone(tt.phone))
		})
	}
}

// ============================================
// Submit Tests
// ============================================

func TestService_Submit(t *testing.T) {
	service, _ := newTestMessageService()

	m, err := service.Submit(context.Background(), SubmitInput{
		Name:    "Juan Dela Cruz",
		Phone:   "09171234567",
		Subject: "Sizing",
		Body:    "Do you have this in XL?",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, m.ID)
	assert.False(t, m.Read)

	list, err := service.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Juan Dela Cruz", list[0].Name)
}

func TestService_Submit_Validation(t *testing.T) {
	service, _ := newTestMessageService()
	ctx := context.Background()

	tests := []struct {
		name    string
		input   SubmitInput
		wantErr error
	}{
		{"missing name", SubmitInput{Body: "hi"}, ErrNameRequired},
		{"missing body", SubmitInput{Name: "Ana"}, ErrBodyRequired},
		{"bad phone", SubmitInput{Name: "Ana", Body: "hi", Phone: "12345"}, ErrInvalidPhone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Submit(ctx, tt.input)
			assert.ErrorIs(t, err, tt.wantErr)

			// nothing should have reached storage
			list, lerr := service.List(ctx)
			require.NoError(t, lerr)
			assert.Empty(t, list)
		})
	}
}

// ============================================
// Inbox Tests
// ============================================

func TestService_MarkReadAndDelete(t *testing.T) {
	service, _ := newTestMessageService()
	ctx := context.Background()

	m, err := service.Submit(ctx, SubmitInput{Name: "Ana", Body: "hello"})
	require.NoError(t, err)

	require.NoError(t, service.MarkRead(ctx, m.ID))
	list, err := service.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].Read)

	require.NoError(t, service.Delete(ctx, m.ID))
	assert.ErrorIs(t, service.Delete(ctx, m.ID), ErrMessageNotFound)
	assert.ErrorIs(t, service.MarkRead(ctx, m.ID), ErrMessageNotFound)
}

func TestService_List_MissingTableReadsEmpty(t *testing.T) {
	gw := tablestore.NewMemory()
	gw.Provision("products") // contact_messages is not provisioned
	service := NewService(gw)

	list, err := service.List(context.Background())

	require.NoError(t, err)
	assert.Empty(t, list)
}
