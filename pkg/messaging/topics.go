package messaging

type ChangeTopic string

const (
	ItemsChanged ChangeTopic = "item_changed"
	Tracking     ChangeTopic = "tracking"
)

// GlobalPrefix is shared by every exchange the service talks to.
const GlobalPrefix = "global"
