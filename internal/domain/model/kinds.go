package model

// Family groups low-level event types into the input families the engine
// monitors. Events outside every family never produce a record.
type Family int

// Monitored input families.
const (
	FamilyUnknown Family = iota
	FamilyMouse
	FamilyPointer
	FamilyTouch
	FamilyKeyboard
	FamilyWheel
	FamilyInput
	FamilyComposition
)

// families maps concrete event type tags to their input family.
var families = map[string]Family{
	// Mouse events
	"mousedown":   FamilyMouse,
	"mouseup":     FamilyMouse,
	"click":       FamilyMouse,
	"dblclick":    FamilyMouse,
	"contextmenu": FamilyMouse,
	"mousemove":   FamilyMouse,
	"mouseover":   FamilyMouse,
	"mouseout":    FamilyMouse,
	"mouseenter":  FamilyMouse,
	"mouseleave":  FamilyMouse,

	// Pointer events
	"pointerdown":   FamilyPointer,
	"pointerup":     FamilyPointer,
	"pointercancel": FamilyPointer,
	"pointermove":   FamilyPointer,
	"pointerover":   FamilyPointer,
	"pointerout":    FamilyPointer,
	"pointerenter":  FamilyPointer,
	"pointerleave":  FamilyPointer,

	// Touch events
	"touchstart":  FamilyTouch,
	"touchend":    FamilyTouch,
	"touchmove":   FamilyTouch,
	"touchcancel": FamilyTouch,

	// Keyboard events
	"keydown":  FamilyKeyboard,
	"keyup":    FamilyKeyboard,
	"keypress": FamilyKeyboard,

	// Wheel events
	"wheel": FamilyWheel,

	// Input events
	"input":       FamilyInput,
	"beforeinput": FamilyInput,

	// Composition (IME) events
	"compositionstart":  FamilyComposition,
	"compositionupdate": FamilyComposition,
	"compositionend":    FamilyComposition,
}

// Classify returns the input family for an event type tag, or FamilyUnknown
// for types the engine does not monitor.
func Classify(eventType string) Family {
	return families[eventType]
}

// IsMonitored reports whether the event type belongs to a monitored family.
func IsMonitored(eventType string) bool {
	return Classify(eventType) != FamilyUnknown
}
