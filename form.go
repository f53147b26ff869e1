package goldlog

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// Appender is the part of a Store a Form needs.
type Appender interface {
	Append(ctx context.Context, p Purchase) error
}

// IDGenerator returns a new purchase id on every call.
type IDGenerator func() string

// NewID returns a time ordered UUID (version 7), so ids sort like the
// purchases were entered.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// the random source failed, fall back to a random UUID.
		return uuid.NewString()
	}
	return id.String()
}

// Form holds the values of a purchase being entered.
type Form struct {
	list   Appender
	notify Notifier
	newID  IDGenerator

	date     string
	price    string
	quantity string
}

// NewForm returns an empty Form appending into list.
// A nil notifier discards notifications and a nil newID uses NewID.
func NewForm(list Appender, notify Notifier, newID IDGenerator) *Form {
	if notify == nil {
		notify = Discard
	}
	if newID == nil {
		newID = NewID
	}
	return &Form{list: list, notify: notify, newID: newID}
}

// UpdateField sets field to value, as typed.
func (f *Form) UpdateField(field Field, value string) error {
	switch field {
	case FieldDate:
		f.date = value
	case FieldPrice:
		f.price = value
	case FieldQuantity:
		f.quantity = value
	default:
		_, err := ParseField(string(field))
		return err
	}
	return nil
}

// Value returns the current value of field.
func (f *Form) Value(field Field) string {
	return f.purchase().Get(field)
}

func (f *Form) purchase() Purchase {
	return Purchase{Date: f.date, Price: f.price, Quantity: f.quantity}
}

// Reset clears all fields.
func (f *Form) Reset() {
	f.date, f.price, f.quantity = "", "", ""
}

// Submit turns the fields into a new Purchase and appends it.
//
// When a field is blank Submit reports a ValidationError and keeps the
// fields as they are. When the append is rejected (for instance because the
// list is still loading) the fields are kept too. Otherwise the fields are
// cleared and the new Purchase returned; if only saving it failed, the error
// matching ErrPersistence is returned along with it.
func (f *Form) Submit(ctx context.Context) (Purchase, error) {
	p := f.purchase()
	if err := p.Validate(); err != nil {
		f.notify.Notify(errorNotification("Error", "Please fill in all required fields.", err))
		return Purchase{}, err
	}
	p.ID = f.newID()

	err := f.list.Append(ctx, p)
	if err != nil && !errors.Is(err, ErrPersistence) {
		message := "Could not add the purchase."
		if errors.Is(err, ErrNotReady) {
			message = "Purchases are still loading, try again in a moment."
		}
		f.notify.Notify(errorNotification("Error", message, err))
		return Purchase{}, err
	}

	f.Reset()
	f.notify.Notify(Notification{Level: LevelSuccess, Title: "Success", Message: "Purchase added!"})
	return p, err
}
