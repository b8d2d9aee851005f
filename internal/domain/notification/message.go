package notification

import (
	"fmt"
	"strings"
	"time"
)

const (
	TitleLeaveRequest     = "New Leave Request"
	TitleLeaveApproved    = "Leave Request Approved"
	TitleLeaveRejected    = "Leave Request Rejected"
	TitlePayslipAvailable = "New Payslip Available"
	TitleDocumentUploaded = "New Document Uploaded"
	TitleRoleChanged      = "Your Role Has Changed"
	TitleClaimSubmitted   = "New Claim Submitted"
	TitleClaimProcessed   = "Claim Processed"
	TitleClaimRejected    = "Claim Rejected"
)

func LeaveRequestMessage(employeeName, leaveType, startDate, endDate string) string {
	return fmt.Sprintf("%s has requested %s leave from %s to %s", employeeName, leaveType, startDate, endDate)
}

// LeaveStatusMessage appends ". Reason: {reason}" when a reason is given.
func LeaveStatusMessage(approved bool, leaveType, startDate, endDate, reason string) string {
	status := "rejected"
	if approved {
		status = "approved"
	}
	msg := fmt.Sprintf("Your %s leave request from %s to %s has been %s", leaveType, startDate, endDate, status)
	if reason != "" {
		msg += ". Reason: " + reason
	}
	return msg
}

func PayslipMessage(month, year int) string {
	return fmt.Sprintf("Your payslip for %s %d is now available", time.Month(month).String(), year)
}

func DocumentUploadedMessage(documentName string) string {
	return fmt.Sprintf("A new document \"%s\" was added to your employee record", documentName)
}

func RoleChangedMessage(newRole string) string {
	return fmt.Sprintf("Your role has been changed to %s", newRole)
}

// ClaimSubmittedMessage flags urgent claims so reviewers can triage from the list.
func ClaimSubmittedMessage(employeeName, claimType string, urgent bool) string {
	article := "a"
	if claimType != "" && strings.ContainsRune("aeiou", rune(claimType[0])) {
		article = "an"
	}
	msg := fmt.Sprintf("%s has submitted %s %s claim", employeeName, article, claimType)
	if urgent {
		msg += " marked as urgent"
	}
	return msg
}

func ClaimResolvedMessage(processed bool, claimType, note string) string {
	status := "rejected"
	if processed {
		status = "processed"
	}
	msg := fmt.Sprintf("Your %s claim has been %s", claimType, status)
	if note != "" {
		msg += ". Note: " + note
	}
	return msg
}
