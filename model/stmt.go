package model

// An Expr is an expression in a method body.
type Expr interface {
	isExpr()
}

// A Stmt is a statement in a method body.
type Stmt interface {
	isStmt()
}

// Op is a binary operator. Comparisons are strict: operands are
// not converted.
type Op int

const (
	Lt Op = iota
	Gt
	Le
	Ge
	Eq
	Ne
	And
	Or
)

var opText = [...]string{
	Lt:  "<",
	Gt:  ">",
	Le:  "<=",
	Ge:  ">=",
	Eq:  "==",
	Ne:  "!=",
	And: "&&",
	Or:  "||",
}

func (op Op) String() string { return opText[op] }

type (
	// Prop is a property of the current object.
	Prop struct{ Name string }

	// Var is a local variable or argument.
	Var struct{ Name string }

	// Lit is a literal value: a string, int64, float64, bool,
	// *apd.Decimal, nil or an empty []interface{}.
	Lit struct{ Value interface{} }

	// Const is a constant of the current class.
	Const struct{ Name string }

	Not struct{ X Expr }

	Binary struct {
		Op   Op
		X, Y Expr
	}

	// Count is the number of items in a list.
	Count struct{ X Expr }

	// Length is the number of characters in the string form of X.
	Length struct{ X Expr }

	// DigitCount is the number of decimal digits in the string form of X.
	DigitCount struct{ X Expr }

	// FractionDigitCount is the number of digits after the decimal
	// point in the string form of X.
	FractionDigitCount struct{ X Expr }

	// Matches reports whether the whole string form of X matches an
	// XML Schema pattern.
	Matches struct {
		X       Expr
		Pattern string
	}

	// OneOf reports whether X equals one of Values.
	OneOf struct {
		X      Expr
		Values []Expr
	}

	// IsSet reports whether X, of semantic type Type, holds a value.
	IsSet struct {
		X    Expr
		Type string
	}

	// ValueOf is the scalar value wrapped by the object X.
	ValueOf struct{ X Expr }

	// BoolString is the canonical spelling of the boolean X.
	BoolString struct{ X Expr }

	// Escaped is X, escaped for use in XML text or attribute values.
	Escaped struct{ X Expr }

	// NewObject constructs an instance of a class.
	NewObject struct {
		Type string
		Args []Expr
	}
)

func (Prop) isExpr()               {}
func (Var) isExpr()                {}
func (Lit) isExpr()                {}
func (Const) isExpr()              {}
func (Not) isExpr()                {}
func (Binary) isExpr()             {}
func (Count) isExpr()              {}
func (Length) isExpr()             {}
func (DigitCount) isExpr()         {}
func (FractionDigitCount) isExpr() {}
func (Matches) isExpr()            {}
func (OneOf) isExpr()              {}
func (IsSet) isExpr()              {}
func (ValueOf) isExpr()            {}
func (BoolString) isExpr()         {}
func (Escaped) isExpr()            {}
func (NewObject) isExpr()          {}

type (
	Assign struct {
		To    Expr
		Value Expr
	}

	// Append adds Item to the end of the list List.
	Append struct {
		List Expr
		Item Expr
	}

	// Guard raises a validation failure with Message when Cond holds.
	Guard struct {
		Cond    Expr
		Message string
	}

	If struct {
		Cond Expr
		Then []Stmt
	}

	// ForEach runs Body once for every item of List, bound to the
	// variable Item.
	ForEach struct {
		List Expr
		Item string
		Body []Stmt
	}

	// Return returns X from the method. X is nil for methods
	// without a return value.
	Return struct{ X Expr }

	// Call invokes Method on Recv. It can be used as an expression
	// or a statement.
	Call struct {
		Recv   Expr
		Method string
		Args   []Expr
	}

	// Write writes the concatenation of Parts to the output stream
	// Stream.
	Write struct {
		Stream Expr
		Parts  []Expr
	}

	// Block groups statements that belong together, such as a guard
	// and the variables it uses.
	Block []Stmt

	// Raw holds verbatim source, keyed by the language it is written
	// in. Emitters fail on Raw statements lacking their language.
	Raw struct {
		Snippets map[string]string
	}
)

func (Assign) isStmt()  {}
func (Append) isStmt()  {}
func (Guard) isStmt()   {}
func (If) isStmt()      {}
func (ForEach) isStmt() {}
func (Return) isStmt()  {}
func (Call) isStmt()    {}
func (Call) isExpr()    {}
func (Write) isStmt()   {}
func (Block) isStmt()   {}
func (Raw) isStmt()     {}

// This is the current object.
var This = Var{Name: "this"}
