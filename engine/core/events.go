package core

// EventContext carries a small fixed payload with a fired event. Which slots
// are meaningful depends on the code.
type EventContext struct {
	U32 [4]uint32
	F32 [4]float32
	Str string
}

// System internal event codes. Applications should use codes beyond 255.
type SystemEventCode uint16

const (
	// Shuts the application down on the next frame.
	EVENT_CODE_APPLICATION_QUIT SystemEventCode = 0x01

	// Window was resized.
	/* Context usage:
	 * u32 width = ctx.U32[0];
	 * u32 height = ctx.U32[1];
	 */
	EVENT_CODE_RESIZED SystemEventCode = 0x02

	// A cached resource was reloaded from disk.
	/* Context usage:
	 * str name = ctx.Str;
	 */
	EVENT_CODE_ASSET_RELOADED SystemEventCode = 0x03

	MAX_EVENT_CODE SystemEventCode = 0xFF
)

type FnOnEvent func(code SystemEventCode, sender interface{}, ctx EventContext) bool

type eventSystemState struct {
	registered map[SystemEventCode][]FnOnEvent
}

var eventState *eventSystemState

func EventSystemInitialize() bool {
	if eventState != nil {
		return false
	}
	eventState = &eventSystemState{
		registered: make(map[SystemEventCode][]FnOnEvent),
	}
	return true
}

func EventSystemShutdown() {
	eventState = nil
}

func EventRegister(code SystemEventCode, onEvent FnOnEvent) bool {
	if eventState == nil || onEvent == nil {
		return false
	}
	eventState.registered[code] = append(eventState.registered[code], onEvent)
	return true
}

// EventFire hands the event to every listener registered for the code, in
// registration order, until one reports it handled.
func EventFire(code SystemEventCode, sender interface{}, ctx EventContext) bool {
	if eventState == nil {
		return false
	}
	for _, onEvent := range eventState.registered[code] {
		if onEvent(code, sender, ctx) {
			return true
		}
	}
	return false
}
