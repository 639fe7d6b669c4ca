package ir

// Content is the executable-content sum type named by the
// specification's §3: raise, send, cancel, assign, log,
// if/elseif/else, foreach, script. Each variant implements the
// marker method so a []Content can be executed uniformly by
// switching on concrete type, the same dispatch-by-type-switch the
// teacher uses for core.Branch/core.Action dispatch.
type Content interface {
	contentNode()
}

type Raise struct {
	Event string
}

func (Raise) contentNode() {}

type Send struct {
	// Event / EventExpr: literal or computed event name.
	Event     string
	EventExpr string

	// Target / TargetExpr: literal or computed delivery target.
	Target     string
	TargetExpr string

	// Type / TypeExpr: literal or computed processor type URI.
	Type     string
	TypeExpr string

	ID         string
	IDLocation string

	// Delay / DelayExpr: literal duration string ("0s", "5s") or
	// computed.
	Delay     string
	DelayExpr string

	Namelist []string
	Params   []Param
	Content  *ContentExpr
}

func (Send) contentNode() {}

type Cancel struct {
	SendID     string
	SendIDExpr string
}

func (Cancel) contentNode() {}

type Assign struct {
	Location string
	Expr     string
}

func (Assign) contentNode() {}

type Log struct {
	Label string
	Expr  string
}

func (Log) contentNode() {}

// If is the if/elseif/else ladder: Clauses[i].Cond == "" marks the
// trailing else (there can be at most one, and it must be last).
type If struct {
	Clauses []IfClause
}

func (If) contentNode() {}

type IfClause struct {
	Cond string
	Body []Content
}

type Foreach struct {
	Array string
	Item  string
	Index string // "" if no index variable was requested
	Body  []Content
}

func (Foreach) contentNode() {}

type Script struct {
	Src string
}

func (Script) contentNode() {}
