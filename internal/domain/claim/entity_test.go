package claim

import (
	"strings"
	"testing"

	"github.com/cmlabs-hris/hr-portal-backend/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaimStatus_CanTransitionTo(t *testing.T) {
	pending := ClaimStatusPending
	assert.True(t, pending.CanTransitionTo(ClaimStatusProcessed))
	assert.True(t, pending.CanTransitionTo(ClaimStatusRejected))
	assert.False(t, pending.CanTransitionTo(ClaimStatusPending))

	for _, s := range []ClaimStatus{ClaimStatusProcessed, ClaimStatusRejected} {
		assert.False(t, s.CanTransitionTo(ClaimStatusProcessed), "from %s", s)
		assert.False(t, s.CanTransitionTo(ClaimStatusRejected), "from %s", s)
	}
}

func TestCreateClaimRequest_Validate(t *testing.T) {
	req := CreateClaimRequest{Type: " Material ", Description: "  New laptop charger  ", IsUrgent: true}
	require.NoError(t, req.Validate())
	assert.Equal(t, "material", req.Type)
	assert.Equal(t, "New laptop charger", req.Description)

	bad := CreateClaimRequest{Type: "travel", Description: strings.Repeat("x", 2001)}
	var verrs validator.ValidationErrors
	require.ErrorAs(t, bad.Validate(), &verrs)
	fields := verrs.ToMap()
	assert.Contains(t, fields, "type")
	assert.Contains(t, fields, "description")
}

func TestRejectClaimRequest_RequiresReason(t *testing.T) {
	req := RejectClaimRequest{Reason: "   "}
	assert.Error(t, req.Validate())

	req = RejectClaimRequest{Reason: " duplicate "}
	require.NoError(t, req.Validate())
	assert.Equal(t, "duplicate", req.Reason)
}

func TestUploadAttachmentRequest_Validate(t *testing.T) {
	req := UploadAttachmentRequest{File: strings.NewReader("x"), FileName: "../receipt.png", Size: 10}
	assert.Error(t, req.Validate())

	req = UploadAttachmentRequest{File: strings.NewReader("x"), FileName: "receipt.png", Size: MaxAttachmentSize + 1}
	assert.Error(t, req.Validate())

	req = UploadAttachmentRequest{File: strings.NewReader("x"), FileName: "receipt.png", Size: 10}
	assert.NoError(t, req.Validate())
}
