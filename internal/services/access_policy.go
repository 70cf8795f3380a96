package services

import "github.com/4brn/stddy-bddy/internal/models"

// Operation names an action subject to access control
type Operation string

const (
	OpTestView       Operation = "view"
	OpTestEdit       Operation = "edit"
	OpTestDelete     Operation = "delete"
	OpResultView     Operation = "view_result"
	OpUserManage     Operation = "manage_users"
	OpCategoryManage Operation = "manage_categories"
)

// Target describes the resource an operation applies to
type Target struct {
	Resource string
	ID       uint
	OwnerID  uint
	Private  bool
}

// AccessPolicy decides authorization questions. All methods are pure
// functions of their arguments so decisions are trivially testable.
type AccessPolicy struct{}

func NewAccessPolicy() *AccessPolicy {
	return &AccessPolicy{}
}

// Authorize returns nil when the actor may perform op on target, or a
// PermissionError explaining the denial. A nil actor is anonymous.
func (p *AccessPolicy) Authorize(actor *models.User, op Operation, target Target) error {
	if actor != nil && actor.IsAdmin() {
		return nil
	}

	var actorID uint
	if actor != nil {
		actorID = actor.ID
	}

	switch op {
	case OpTestView:
		if !target.Private {
			return nil
		}
		if actor != nil && actor.ID == target.OwnerID {
			return nil
		}
		return NewPermissionError(actorID, target.ID, target.Resource, string(op), "test is private")

	case OpTestEdit, OpTestDelete:
		if actor != nil && actor.ID == target.OwnerID {
			return nil
		}
		return NewPermissionError(actorID, target.ID, target.Resource, string(op), "not the author")

	case OpResultView:
		if actor != nil && actor.ID == target.OwnerID {
			return nil
		}
		return NewPermissionError(actorID, target.ID, target.Resource, string(op), "not the owner")

	case OpUserManage, OpCategoryManage:
		return NewPermissionError(actorID, target.ID, target.Resource, string(op), "admin only")

	default:
		return NewPermissionError(actorID, target.ID, target.Resource, string(op), "unknown operation")
	}
}

// CanViewTest reports whether the actor may read the test
func (p *AccessPolicy) CanViewTest(actor *models.User, test *models.Test) bool {
	return p.Authorize(actor, OpTestView, Target{Resource: "test", ID: test.ID, OwnerID: test.AuthorID, Private: test.IsPrivate}) == nil
}

// CanModifyTest reports whether the actor may update or delete the test
func (p *AccessPolicy) CanModifyTest(actor *models.User, test *models.Test) bool {
	return p.Authorize(actor, OpTestEdit, Target{Resource: "test", ID: test.ID, OwnerID: test.AuthorID}) == nil
}

// CanViewResult reports whether the actor may read the result
func (p *AccessPolicy) CanViewResult(actor *models.User, result *models.Result) bool {
	return p.Authorize(actor, OpResultView, Target{Resource: "result", ID: result.ID, OwnerID: result.UserID}) == nil
}

// CanManageUsers reports whether the actor may administer user accounts
func (p *AccessPolicy) CanManageUsers(actor *models.User) bool {
	return p.Authorize(actor, OpUserManage, Target{Resource: "user"}) == nil
}

// CanManageCategories reports whether the actor may mutate categories
func (p *AccessPolicy) CanManageCategories(actor *models.User) bool {
	return p.Authorize(actor, OpCategoryManage, Target{Resource: "category"}) == nil
}
