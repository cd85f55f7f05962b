package event

// Scope selects the audience of a delivery.
type Scope int

const (
	// ScopeBroadcast targets every open connection, logged in or not.
	ScopeBroadcast Scope = iota
	// ScopeExceptSender targets every open connection but the originating one.
	ScopeExceptSender
	// ScopeUnicast targets a single connection.
	ScopeUnicast
)

// Delivery pairs an event with its audience. Deliveries are consumed by the
// fan-out worker in emission order, which is what makes broadcast order equal
// append order.
type Delivery struct {
	Event DomainEvent
	Scope Scope
	// Connection is the sender for ScopeExceptSender and the target for
	// ScopeUnicast. Unused for ScopeBroadcast.
	Connection string
}

func Broadcast(e DomainEvent) Delivery {
	return Delivery{Event: e, Scope: ScopeBroadcast}
}

func Except(connectionID string, e DomainEvent) Delivery {
	return Delivery{Event: e, Scope: ScopeExceptSender, Connection: connectionID}
}

func Unicast(connectionID string, e DomainEvent) Delivery {
	return Delivery{Event: e, Scope: ScopeUnicast, Connection: connectionID}
}
