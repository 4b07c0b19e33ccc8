package model

// LeadStatus tracks where a lead sits in the pipeline lifecycle.
type LeadStatus string

const (
	StatusNew           LeadStatus = "NEW"
	StatusResearching   LeadStatus = "RESEARCHING"
	StatusQualifying    LeadStatus = "QUALIFYING"
	StatusQualified     LeadStatus = "QUALIFIED"
	StatusDisqualified  LeadStatus = "DISQUALIFIED"
	StatusOutreach      LeadStatus = "OUTREACH"
	StatusConversation  LeadStatus = "CONVERSATION"
	StatusMeetingBooked LeadStatus = "MEETING_BOOKED"
	StatusNurture       LeadStatus = "NURTURE"
)

// Valid reports whether s is a known lead status.
func (s LeadStatus) Valid() bool {
	switch s {
	case StatusNew, StatusResearching, StatusQualifying, StatusQualified,
		StatusDisqualified, StatusOutreach, StatusConversation,
		StatusMeetingBooked, StatusNurture:
		return true
	}
	return false
}

// statusTransitions is the set of allowed stage-driven transitions.
// QUALIFYING is transient: qualification always resolves it to a terminal
// QUALIFIED or DISQUALIFIED within the same cycle. Either NEW or RESEARCHING
// may enter qualification directly (enrichment is not a hard prerequisite).
var statusTransitions = map[LeadStatus][]LeadStatus{
	StatusNew:          {StatusResearching, StatusQualifying, StatusQualified, StatusDisqualified},
	StatusResearching:  {StatusQualifying, StatusQualified, StatusDisqualified},
	StatusQualifying:   {StatusQualified, StatusDisqualified},
	StatusQualified:    {StatusOutreach, StatusNurture, StatusDisqualified},
	StatusOutreach:     {StatusConversation, StatusNurture, StatusDisqualified},
	StatusConversation: {StatusMeetingBooked, StatusDisqualified, StatusNurture},
	StatusNurture:      {StatusOutreach, StatusConversation},
}

// ValidTransition reports whether a lead may move from one status to another.
// A no-op transition (from == to) is always allowed.
func ValidTransition(from, to LeadStatus) bool {
	if from == to {
		return true
	}
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Intent is the classified intent of an inbound reply.
type Intent string

const (
	IntentInterested       Intent = "INTERESTED"
	IntentObjection        Intent = "OBJECTION"
	IntentNotInterested    Intent = "NOT_INTERESTED"
	IntentBookingConfirmed Intent = "BOOKING_CONFIRMED"
)

// StatusForIntent maps a reply intent to the lead's next status. Unknown or
// free-form intents keep the conversation open.
func StatusForIntent(intent Intent) LeadStatus {
	switch intent {
	case IntentNotInterested:
		return StatusDisqualified
	case IntentBookingConfirmed:
		return StatusMeetingBooked
	default:
		return StatusConversation
	}
}
