package models

import (
	"errors"
	"fmt"
)

// ContextKind selects which balance and side-effect rules apply to a transaction.
type ContextKind string

const (
	ContextPersonal ContextKind = "personal"
	ContextContact  ContextKind = "contact"
	ContextGroup    ContextKind = "group"
)

// ContactInfo identifies the other side of a contact transaction. Email is
// used to match a registered counterparty; Name and Phone are display only.
type ContactInfo struct {
	Name  string
	Email string
	Phone string
}

// TransactionContext is a tagged variant: exactly one of the payloads matching
// Kind is set. Build it with PersonalContext, ContactContext or GroupContext.
type TransactionContext struct {
	Kind    ContextKind
	GroupID string       // set only for ContextGroup
	Contact *ContactInfo // set only for ContextContact
}

func PersonalContext() TransactionContext {
	return TransactionContext{Kind: ContextPersonal}
}

func ContactContext(info ContactInfo) TransactionContext {
	return TransactionContext{Kind: ContextContact, Contact: &info}
}

func GroupContext(groupID string) TransactionContext {
	return TransactionContext{Kind: ContextGroup, GroupID: groupID}
}

func (c TransactionContext) IsGroup() bool    { return c.Kind == ContextGroup }
func (c TransactionContext) IsContact() bool  { return c.Kind == ContextContact }
func (c TransactionContext) IsPersonal() bool { return c.Kind == ContextPersonal }

// Validate rejects variants whose payload does not match their kind.
func (c TransactionContext) Validate() error {
	switch c.Kind {
	case ContextPersonal:
		if c.GroupID != "" || c.Contact != nil {
			return errors.New("personal context carries no group or contact")
		}
	case ContextContact:
		if c.GroupID != "" {
			return errors.New("contact context carries no group")
		}
		if c.Contact == nil || (c.Contact.Name == "" && c.Contact.Email == "" && c.Contact.Phone == "") {
			return errors.New("contact context requires contact details")
		}
	case ContextGroup:
		if c.Contact != nil {
			return errors.New("group context carries no contact")
		}
		if c.GroupID == "" {
			return errors.New("group context requires group id")
		}
	default:
		return fmt.Errorf("unknown context kind %q", c.Kind)
	}
	return nil
}
