package handler

import (
	accessdomain "booking-ledger-go/internal/domain/access"
	ledgerdomain "booking-ledger-go/internal/domain/ledger"
	notificationsdomain "booking-ledger-go/internal/domain/notifications"
	userdomain "booking-ledger-go/internal/domain/user"
	"booking-ledger-go/internal/push"
	"booking-ledger-go/pkg/logger"
)

type Handlers struct {
	Access        *accessdomain.Service
	Ledger        *ledgerdomain.Service
	Notifications *notificationsdomain.Service
	Users         *userdomain.Service
	Push          *push.Hub

	log logger.Logger
}

func New(access *accessdomain.Service, ledger *ledgerdomain.Service, notifications *notificationsdomain.Service, users *userdomain.Service, hub *push.Hub, log logger.Logger) *Handlers {
	return &Handlers{
		Access:        access,
		Ledger:        ledger,
		Notifications: notifications,
		Users:         users,
		Push:          hub,
		log:           log,
	}
}
