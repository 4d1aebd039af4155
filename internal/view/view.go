package view

import "fmt"

// Panel is the single full-page view being shown.
type Panel int

const (
	PanelHome Panel = iota
	PanelDetails
	PanelBrokerProfile
	PanelAdmin
)

func (p Panel) String() string {
	switch p {
	case PanelHome:
		return "home"
	case PanelDetails:
		return "details"
	case PanelBrokerProfile:
		return "broker"
	case PanelAdmin:
		return "admin"
	}
	return fmt.Sprintf("panel(%d)", int(p))
}

// Modal is drawn over the current panel and never replaces it.
type Modal int

const (
	ModalNone Modal = iota
	ModalLogin
	ModalRegister
	ModalForgot
	ModalReset
	ModalAddProperty
	ModalBlocker
	ModalConfirm
	ModalGallery
)

var modalNames = map[Modal]string{
	ModalNone:        "",
	ModalLogin:       "login",
	ModalRegister:    "register",
	ModalForgot:      "forgot",
	ModalReset:       "reset",
	ModalAddProperty: "add-property",
	ModalBlocker:     "blocker",
	ModalConfirm:     "confirm",
	ModalGallery:     "gallery",
}

func (m Modal) String() string { return modalNames[m] }

// ParseModal maps the ?modal= query value onto a user-openable modal.
// Confirm and gallery are opened by their own routes only.
func ParseModal(s string) Modal {
	switch s {
	case "login":
		return ModalLogin
	case "register":
		return ModalRegister
	case "forgot":
		return ModalForgot
	case "reset":
		return ModalReset
	case "add-property":
		return ModalAddProperty
	case "blocker":
		return ModalBlocker
	}
	return ModalNone
}

type View struct {
	Panel Panel
	Modal Modal
}

// Visible reports whether p is the panel on screen.
func (v View) Visible(p Panel) bool {
	switch p {
	case PanelHome, PanelDetails, PanelBrokerProfile, PanelAdmin:
		return v.Panel == p
	}
	return false
}

func (v View) Open(m Modal) View {
	v.Modal = m
	return v
}

func (v View) Close() View {
	v.Modal = ModalNone
	return v
}
