package goldlog

import (
	"github.com/sirupsen/logrus"
)

// Level classifies a Notification.
type Level int

const (
	LevelSuccess Level = iota
	LevelError
)

func (l Level) String() string {
	if l == LevelError {
		return "error"
	}
	return "success"
}

// Notification is a short message meant for the user.
type Notification struct {
	Level   Level
	Title   string
	Message string
	Err     error // the reported error, nil for successes.
}

// Notifier shows notifications to the user.
type Notifier interface {
	Notify(Notification)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

// Discard drops every notification.
var Discard Notifier = NotifierFunc(func(Notification) {})

// LogNotifier prints notifications through a logrus logger: successes at info
// level, errors at error level.
type LogNotifier struct {
	Logger logrus.FieldLogger
}

func (l LogNotifier) Notify(n Notification) {
	entry := l.Logger.WithField("title", n.Title)
	if n.Level == LevelError {
		if n.Err != nil {
			entry = entry.WithError(n.Err)
		}
		entry.Error(n.Message)
		return
	}
	entry.Info(n.Message)
}

func errorNotification(title, message string, err error) Notification {
	return Notification{Level: LevelError, Title: title, Message: message, Err: err}
}
