package notification

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLeaveMessages(t *testing.T) {
	assert.Equal(t,
		"Jane Doe has requested vacation leave from 2025-07-01 to 2025-07-05",
		LeaveRequestMessage("Jane Doe", "vacation", "2025-07-01", "2025-07-05"))

	assert.Equal(t,
		"Your sick leave request from 2025-07-01 to 2025-07-02 has been approved",
		LeaveStatusMessage(true, "sick", "2025-07-01", "2025-07-02", ""))

	assert.Equal(t,
		"Your sick leave request from 2025-07-01 to 2025-07-02 has been rejected. Reason: Team offsite",
		LeaveStatusMessage(false, "sick", "2025-07-01", "2025-07-02", "Team offsite"))
}

func TestPayslipMessage(t *testing.T) {
	assert.Equal(t, "Your payslip for March 2025 is now available", PayslipMessage(3, 2025))
}

func TestClaimMessages(t *testing.T) {
	assert.Equal(t, "Jane Doe has submitted a material claim",
		ClaimSubmittedMessage("Jane Doe", "material", false))
	assert.Equal(t, "Jane Doe has submitted an account claim marked as urgent",
		ClaimSubmittedMessage("Jane Doe", "account", true))
	assert.Equal(t, "Your other claim has been processed",
		ClaimResolvedMessage(true, "other", ""))
	assert.Equal(t, "Your material claim has been rejected. Note: Duplicate of last week",
		ClaimResolvedMessage(false, "material", "Duplicate of last week"))
}
