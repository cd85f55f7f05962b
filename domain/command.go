package domain

// Command is an inbound client intent, carried from the transport to the
// relay coordinator. Every command names the connection it originated from;
// the coordinator validates it against the registry state.
type Command interface {
	ConnectionID() string
}

// LoginCommand announces a participant identity for a connection.
type LoginCommand struct {
	Connection string
	Username   string
	Avatar     string
	Status     Status
}

func (c LoginCommand) ConnectionID() string { return c.Connection }

// PostMessageCommand posts a text message on behalf of a logged-in connection.
type PostMessageCommand struct {
	Connection string
	Content    string
}

func (c PostMessageCommand) ConnectionID() string { return c.Connection }

// TypingCommand sets or clears the sender's typing flag.
type TypingCommand struct {
	Connection string
	IsTyping   bool
}

func (c TypingCommand) ConnectionID() string { return c.Connection }

// ReactionCommand attaches an emoji reaction to an existing message.
type ReactionCommand struct {
	Connection   string
	MessageID    string
	ReactionType string
}

func (c ReactionCommand) ConnectionID() string { return c.Connection }

// DisconnectCommand is the terminal command for a connection. It is emitted
// by the transport itself, never by the client, and is always the last
// command dispatched for a given connection id.
type DisconnectCommand struct {
	Connection string
}

func (c DisconnectCommand) ConnectionID() string { return c.Connection }
