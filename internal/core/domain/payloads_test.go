package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/certdrive/realtime-gateway/internal/core/domain"
	apperrors "github.com/certdrive/realtime-gateway/internal/core/errors"
)

func TestPayloadValidation(t *testing.T) {
	tests := []struct {
		name    string
		payload interface{ Validate() error }
		wantErr error
	}{
		{
			name:    "joinRoom valid",
			payload: domain.JoinRoomPayload{Room: "application:42", UserID: "drv_1"},
		},
		{
			name:    "joinRoom without userId is still valid",
			payload: domain.JoinRoomPayload{Room: "application:42"},
		},
		{
			name:    "joinRoom missing room",
			payload: domain.JoinRoomPayload{UserID: "drv_1"},
			wantErr: apperrors.ErrRoomRequired,
		},
		{
			name:    "leaveRoom missing room",
			payload: domain.LeaveRoomPayload{},
			wantErr: apperrors.ErrRoomRequired,
		},
		{
			name:    "jobRequestUpdate valid without recipients",
			payload: domain.JobRequestUpdatePayload{JobRequestID: "jr_1", Status: "pending"},
		},
		{
			name:    "jobRequestUpdate missing id",
			payload: domain.JobRequestUpdatePayload{Status: "pending"},
			wantErr: apperrors.ErrJobRequestIDRequired,
		},
		{
			name:    "jobRequestUpdate missing status",
			payload: domain.JobRequestUpdatePayload{JobRequestID: "jr_1"},
			wantErr: apperrors.ErrStatusRequired,
		},
		{
			name:    "applicationUpdate valid",
			payload: domain.ApplicationUpdatePayload{ApplicationID: "A1", Status: "approved", DriverID: "drv_1"},
		},
		{
			name:    "applicationUpdate missing driver",
			payload: domain.ApplicationUpdatePayload{ApplicationID: "A1", Status: "approved"},
			wantErr: apperrors.ErrDriverIDRequired,
		},
		{
			name:    "notification valid",
			payload: domain.NotificationPayload{UserID: "drv_1", Message: "hello", Type: "info"},
		},
		{
			name:    "notification missing message",
			payload: domain.NotificationPayload{UserID: "drv_1", Type: "info"},
			wantErr: apperrors.ErrMessageRequired,
		},
		{
			name:    "notification missing type",
			payload: domain.NotificationPayload{UserID: "drv_1", Message: "hello"},
			wantErr: apperrors.ErrNotificationTypeRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.payload.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewNotificationMessage(t *testing.T) {
	msg := domain.NewNotificationMessage(domain.NotificationPayload{
		UserID:  "drv_1",
		Message: "Application approved",
		Type:    "success",
		Data:    map[string]string{"applicationId": "A1"},
	})

	assert.Equal(t, "Application approved", msg.Message)
	assert.Equal(t, "success", msg.Type)

	ts, err := time.Parse(time.RFC3339, msg.Timestamp)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC(), ts, time.Minute)
}

func TestApplicationRoom(t *testing.T) {
	assert.Equal(t, "application:42", domain.ApplicationRoom("42"))
}
