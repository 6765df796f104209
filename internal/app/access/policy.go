// Package access decides which roles may perform which operations.
package access

import (
	"fmt"
	"strings"

	"github.com/YelzhanWeb/little-lemon/internal/domain"
	"github.com/YelzhanWeb/little-lemon/internal/interfaces"
)

type Action string

const (
	ReadCatalog        Action = "catalog.read"
	WriteCategories    Action = "category.write"
	WriteMenuItems     Action = "menu_item.write"
	UseCart            Action = "cart.use"
	PlaceOrder         Action = "order.place"
	ReadOrders         Action = "order.read"
	UpdateOrder        Action = "order.update"
	DeleteOrder        Action = "order.delete"
	ManageManagers     Action = "group.manager"
	ManageDeliveryCrew Action = "group.delivery_crew"
)

// minimum role per action; Admin always passes the Manager checks
var minimumRole = map[Action]domain.Role{
	WriteCategories:    domain.RoleAdmin,
	WriteMenuItems:     domain.RoleManager,
	ManageDeliveryCrew: domain.RoleManager,
	ManageManagers:     domain.RoleAdmin,
	DeleteOrder:        domain.RoleAdmin,
}

// Authenticated rejects the anonymous actor
func Authenticated(actor domain.Actor) error {
	if actor.UserID == 0 {
		return domain.ErrUnauthenticated
	}
	return nil
}

// Authorize checks an authenticated actor against a coarse action.
func Authorize(actor domain.Actor, action Action) error {
	if err := Authenticated(actor); err != nil {
		return err
	}

	switch action {
	case ReadCatalog, PlaceOrder, ReadOrders:
		return nil
	case UseCart:
		if actor.Role != domain.RoleCustomer {
			return domain.Forbiddenf("only customers have a cart")
		}
		return nil
	case UpdateOrder:
		if actor.Role == domain.RoleCustomer {
			return domain.Forbiddenf("customers cannot modify orders")
		}
		return nil
	}

	required, ok := minimumRole[action]
	if !ok {
		return domain.Forbiddenf("unknown action %q", action)
	}
	if !actor.Role.AtLeast(required) {
		return domain.Forbiddenf("%s requires %s", action, required)
	}
	return nil
}

// GroupAction maps a managed group name onto the action guarding it.
func GroupAction(group string) (Action, error) {
	switch group {
	case domain.GroupManager:
		return ManageManagers, nil
	case domain.GroupDeliveryCrew:
		return ManageDeliveryCrew, nil
	default:
		return "", domain.NotFoundf("group %q", group)
	}
}

// AuthorizeOrderUpdate checks the changed fields of an order update.
// Delivery crew may only touch the status of an order assigned to them.
// Managers may assign the crew and set the status. The snapshot fields
// (total, user, date) are read-only for everyone.
func AuthorizeOrderUpdate(actor domain.Actor, order *domain.Order, changed []string) error {
	if err := Authorize(actor, UpdateOrder); err != nil {
		return err
	}

	if actor.Role == domain.RoleDeliveryCrew {
		if order.DeliveryCrewID == nil || *order.DeliveryCrewID != actor.UserID {
			return domain.Forbiddenf("order %d is not assigned to you", order.ID)
		}
		for _, field := range changed {
			if field != domain.FieldStatus {
				return domain.Forbiddenf("delivery crew may only update status, not %s", strings.Join(changed, ", "))
			}
		}
		return nil
	}

	for _, field := range changed {
		switch field {
		case domain.FieldTotal, domain.FieldUser, domain.FieldDate:
			return domain.NewValidationError(field, fmt.Sprintf("%s is read-only", field))
		}
	}
	return nil
}

// OrderScope limits order listings to what the actor may see.
func OrderScope(actor domain.Actor) interfaces.OrderScope {
	id := actor.UserID
	switch actor.Role {
	case domain.RoleAdmin, domain.RoleManager:
		return interfaces.OrderScope{}
	case domain.RoleDeliveryCrew:
		return interfaces.OrderScope{DeliveryCrewID: &id}
	default:
		return interfaces.OrderScope{UserID: &id}
	}
}
