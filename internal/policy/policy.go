// Package policy decides which roles may perform which actions.
package policy

import (
	"github.com/kumarbhakta81/Garment-platform/internal/apperr"
	"github.com/kumarbhakta81/Garment-platform/internal/domain/user"
)

type Action string

const (
	CategoryManage      Action = "category.manage"
	ProductCreate       Action = "product.create"
	ProductModerate     Action = "product.moderate"
	ProductManageList   Action = "product.manage_list"
	SampleCreate        Action = "sample.create"
	SampleModerate      Action = "sample.moderate"
	OrderCreate         Action = "order.create"
	OrderAdvance        Action = "order.advance"
	OrderCancel         Action = "order.cancel"
	UserManage          Action = "user.manage"
	NotificationListAll Action = "notification.list_all"
)

var (
	admin      = user.RoleAdmin
	wholesaler = user.RoleWholesaler
	retailer   = user.RoleRetailer
)

var table = map[Action]map[user.Role]bool{
	CategoryManage:      {admin: true},
	ProductCreate:       {admin: true, wholesaler: true},
	ProductModerate:     {admin: true},
	ProductManageList:   {admin: true, wholesaler: true},
	SampleCreate:        {admin: true, wholesaler: true},
	SampleModerate:      {admin: true},
	OrderCreate:         {retailer: true},
	OrderAdvance:        {admin: true, wholesaler: true},
	OrderCancel:         {admin: true, wholesaler: true, retailer: true},
	UserManage:          {admin: true},
	NotificationListAll: {admin: true},
}

var messages = map[Action]string{
	CategoryManage:      "only admins can manage categories",
	ProductModerate:     "only admins can approve or reject products",
	SampleModerate:      "only admins can approve or reject samples",
	OrderCreate:         "only retailers can place orders",
	UserManage:          "admin access required",
	NotificationListAll: "admin access required",
}

func Allowed(role user.Role, action Action) bool {
	return table[action][role]
}

// Require returns a Forbidden error unless role may perform action.
func Require(role user.Role, action Action) error {
	if Allowed(role, action) {
		return nil
	}
	if msg, ok := messages[action]; ok {
		return apperr.Forbidden(msg)
	}
	return apperr.Forbidden("access denied")
}

// RequireOwner allows admins and the owner of a row.
func RequireOwner(actor user.Actor, ownerID int64, msg string) error {
	if actor.IsAdmin() || actor.ID == ownerID {
		return nil
	}
	return apperr.Forbidden(msg)
}
