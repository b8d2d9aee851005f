package team

import (
	"fmt"
	"testing"

	"github.com/cmlabs-hris/hr-portal-backend/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const deptID = "0190a5b2-0000-7000-8000-000000000001"

func memberID(n int) string {
	return fmt.Sprintf("0190a5b2-0000-7000-8000-%012d", n)
}

func members(n int) []string {
	ids := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		ids = append(ids, memberID(i))
	}
	return ids
}

func TestCreateTeamRequest_MemberBounds(t *testing.T) {
	for _, n := range []int{0, 1, 11} {
		req := CreateTeamRequest{Name: "Platform", DepartmentID: deptID, MemberIDs: members(n)}
		var verrs validator.ValidationErrors
		require.ErrorAs(t, req.Validate(), &verrs, "n=%d", n)
		assert.Contains(t, verrs.ToMap(), "member_ids")
	}

	for _, n := range []int{MinMembers, MaxMembers} {
		req := CreateTeamRequest{Name: "Platform", DepartmentID: deptID, MemberIDs: members(n)}
		assert.NoError(t, req.Validate(), "n=%d", n)
	}
}

func TestCreateTeamRequest_DuplicatesCollapse(t *testing.T) {
	// two distinct members once duplicates are dropped
	req := CreateTeamRequest{
		Name:         "  Platform ",
		DepartmentID: deptID,
		MemberIDs:    []string{memberID(1), memberID(1), memberID(2)},
	}
	require.NoError(t, req.Validate())
	assert.Equal(t, "Platform", req.Name)
	assert.Equal(t, []string{memberID(1), memberID(2)}, req.MemberIDs)

	req = CreateTeamRequest{Name: "Platform", DepartmentID: deptID, MemberIDs: []string{memberID(1), memberID(1)}}
	assert.Error(t, req.Validate())
}

func TestCreateTeamRequest_RejectsMalformedIDs(t *testing.T) {
	bad := "not-a-uuid"
	req := CreateTeamRequest{Name: "Platform", DepartmentID: "dept", ManagerID: &bad, MemberIDs: []string{memberID(1), "x"}}
	var verrs validator.ValidationErrors
	require.ErrorAs(t, req.Validate(), &verrs)
	fields := verrs.ToMap()
	assert.Contains(t, fields, "department_id")
	assert.Contains(t, fields, "manager_id")
	assert.Contains(t, fields, "member_ids")
}

func TestUpdateTeamRequest_EmptyManagerClears(t *testing.T) {
	empty := ""
	req := UpdateTeamRequest{ID: "t1", ManagerID: &empty}
	assert.NoError(t, req.Validate())

	req = UpdateTeamRequest{ID: "t1"}
	assert.Error(t, req.Validate())
}

func TestTeam_Includes(t *testing.T) {
	manager := memberID(9)
	tm := Team{ManagerID: &manager, Members: []Member{{EmployeeID: memberID(1)}, {EmployeeID: memberID(2)}}}

	assert.True(t, tm.Includes(memberID(1)))
	assert.True(t, tm.Includes(manager))
	assert.False(t, tm.Includes(memberID(3)))
	assert.False(t, tm.Includes(""))
	assert.Equal(t, []string{memberID(1), memberID(2)}, tm.MemberIDs())
}
