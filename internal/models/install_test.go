package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransitionTo(t *testing.T) {
	allowed := []struct {
		from, to InstallStatus
	}{
		{StatusNewOrder, StatusDeviceShipped},
		{StatusDeviceShipped, StatusInstallationScheduled},
		{StatusDeviceShipped, StatusCancelled},
		{StatusInstallationScheduled, StatusCompleted},
		{StatusInstallationScheduled, StatusCancelled},
		{StatusCompleted, StatusPaymentPendingApproval},
		{StatusPaymentPendingApproval, StatusPaymentReceived},
	}
	for _, tc := range allowed {
		assert.True(t, tc.from.CanTransitionTo(tc.to), "%s -> %s should be allowed", tc.from, tc.to)
	}

	denied := []struct {
		from, to InstallStatus
	}{
		{StatusNewOrder, StatusCompleted},
		{StatusNewOrder, StatusPaymentReceived},
		{StatusNewOrder, StatusCancelled},
		{StatusDeviceShipped, StatusCompleted},
		{StatusCompleted, StatusCancelled},
		{StatusCompleted, StatusPaymentReceived},
		{StatusPaymentPendingApproval, StatusCancelled},
		{StatusPaymentReceived, StatusNewOrder},
		{StatusCancelled, StatusDeviceShipped},
		{StatusDeviceShipped, StatusDeviceShipped},
	}
	for _, tc := range denied {
		assert.False(t, tc.from.CanTransitionTo(tc.to), "%s -> %s should be denied", tc.from, tc.to)
	}
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, StatusPaymentReceived.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.False(t, StatusNewOrder.IsTerminal())
	assert.False(t, StatusCompleted.IsTerminal())
}

func TestComputeAmountDue(t *testing.T) {
	expense := int64(200)
	pending := ExpensePending
	approved := ExpenseApproved

	in := Install{
		ProductPrice:  5000,
		TechnicianFee: 500,
	}
	assert.Equal(t, int64(4500), in.ComputeAmountDue(), "no expense submitted")

	in.ExpenseAmount = &expense
	in.ExpenseStatus = &pending
	assert.Equal(t, int64(4500), in.ComputeAmountDue(), "pending expense must not count")

	in.ExpenseStatus = &approved
	assert.Equal(t, int64(4300), in.ComputeAmountDue(), "approved expense reduces the amount due")
}
