package realtime

// Frame type names exchanged over the websocket
const (
	FrameTypeAuth                  = "auth"
	FrameTypeAuthOK                = "auth-ok"
	FrameTypeNewServiceRequest     = "new-service-request"
	FrameTypeServiceRequestUpdated = "service-request-updated"
	FrameTypeNotification          = "notification"
)

// AuthFrame is the first frame a client must send after the upgrade
type AuthFrame struct {
	Type   string `json:"type"`
	Token  string `json:"token"`
	UserID string `json:"userId"`
}

// AuthOKFrame acknowledges a successful authentication
type AuthOKFrame struct {
	Type   string `json:"type"`
	UserID string `json:"userId"`
}

// ServiceRequestFrame notifies about a created or updated request
type ServiceRequestFrame struct {
	Type      string `json:"type"`
	RequestID string `json:"requestId"`
	UserID    string `json:"userId"`
	Status    string `json:"status,omitempty"`
}

// NotificationFrame carries a human-readable message to a single user
type NotificationFrame struct {
	Type    string `json:"type"`
	Title   string `json:"title"`
	Message string `json:"message"`
}
