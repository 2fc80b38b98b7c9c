package editor

import "fmt"

type NoticeKind int

const (
	// NoticeLoad reports a failed fetch; the document stays unusable until a
	// successful reload.
	NoticeLoad NoticeKind = iota
	// NoticeValidation reports a local precondition that blocked a call
	// before it was issued.
	NoticeValidation
	// NoticeMutation reports a save, convert or payment call the service
	// rejected. Local state is kept so the user can retry.
	NoticeMutation
	// NoticeSoft reports an optional feature that was unavailable.
	NoticeSoft
	NoticeInfo
)

func (k NoticeKind) String() string {
	switch k {
	case NoticeLoad:
		return "load"
	case NoticeValidation:
		return "validation"
	case NoticeMutation:
		return "mutation"
	case NoticeSoft:
		return "soft"
	case NoticeInfo:
		return "info"
	}
	return fmt.Sprintf("NoticeKind(%d)", int(k))
}

// Notice is a user-visible message.
type Notice struct {
	Kind    NoticeKind
	Message string
	Err     error
}

func (n Notice) String() string {
	if n.Err != nil {
		return fmt.Sprintf("%s: %v", n.Message, n.Err)
	}
	return n.Message
}

// Notifier shows notices to the user.
type Notifier interface {
	Notify(Notice)
}

// NotifierFunc adapts a function to a Notifier.
type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

// Tab hints which list the job view should open on.
type Tab string

const (
	TabOverview Tab = "overview"
	TabInvoices Tab = "invoices"
	TabQuotes   Tab = "quotes"
)

// Navigator leaves the editor for the parent job view.
type Navigator interface {
	ToJob(jobID string, tab Tab)
}

// NavigatorFunc adapts a function to a Navigator.
type NavigatorFunc func(jobID string, tab Tab)

func (f NavigatorFunc) ToJob(jobID string, tab Tab) { f(jobID, tab) }
