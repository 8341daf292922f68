package javalite

import (
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// =============================================================================
// Common embedded types for AST nodes
// =============================================================================

// Node contains position and token information common to AST nodes.
// Participle populates these fields during parsing.
type Node struct {
	Pos    lexer.Position `parser:""`
	EndPos lexer.Position `parser:""`
	Tokens []lexer.Token  `parser:""`
}

func (n *Node) tokens() []lexer.Token { return n.Tokens }

// Terminator records whether a statement ended with ";". It must be the last
// embedded field of its node.
type Terminator struct {
	Terminated bool `parser:"@';'?"`
}

func (t *Terminator) terminated() bool { return t.Terminated }

// =============================================================================
// Compilation unit
// =============================================================================

// CompilationUnit is a whole source file.
type CompilationUnit struct {
	Node

	Package *Package    `parser:"@@?"`
	Imports []*Import   `parser:"@@*"`
	Types   []*TypeDecl `parser:"( @@ | ';' )*"`
}

// Package is the package declaration.
type Package struct {
	Node

	Annotations []*Annotation `parser:"@@*"`
	Name        []string      `parser:"'package' @Ident ( '.' @Ident )* ';'"`
}

// Import is a single import declaration. The last part may be "*".
type Import struct {
	Node

	Static bool     `parser:"'import' @'static'?"`
	Path   []string `parser:"@Ident ( '.' @( Ident | '*' ) )* ';'"`
}

// String returns the dotted import path.
func (i *Import) String() string {
	return strings.Join(i.Path, ".")
}

// =============================================================================
// Declarations
// =============================================================================

// Modifier is a keyword modifier or an annotation.
type Modifier struct {
	Keyword    string      `parser:"  @( 'public' | 'protected' | 'private' | 'static' | 'abstract' | 'final' | 'native' | 'synchronized' | 'transient' | 'volatile' | 'strictfp' | 'default' )"`
	Annotation *Annotation `parser:"| @@"`
}

// Annotation is "@Name" with optional arguments.
type Annotation struct {
	Node

	Name []string         `parser:"'@' @Ident ( '.' @Ident )*"`
	Args []*AnnotationArg `parser:"( '(' ( @@ ( ',' @@ )* )? ')' )?"`
}

// AnnotationArg is "key = value" or a bare value.
type AnnotationArg struct {
	Key   string        `parser:"( @Ident '=' )?"`
	Value *ElementValue `parser:"@@"`
}

// ElementValue is an annotation argument value.
type ElementValue struct {
	Annotation *Annotation     `parser:"  @@"`
	Array      []*ElementValue `parser:"| '{' ( @@ ( ',' @@ )* )? ','? '}'"`
	Expr       *Expr           `parser:"| @@"`
}

// TypeDecl is a top-level or local class, interface or enum.
type TypeDecl struct {
	Node

	Modifiers []*Modifier `parser:"@@*"`
	Class     *ClassDecl  `parser:"( @@"`
	Enum      *EnumDecl   `parser:"| @@ )"`
}

// Name returns the declared type name.
func (t *TypeDecl) Name() string {
	switch {
	case t.Class != nil:
		return t.Class.Name
	case t.Enum != nil:
		return t.Enum.Name
	}

	return ""
}

// ClassDecl is a class, interface or annotation type.
type ClassDecl struct {
	Node

	Kind       string      `parser:"@( 'class' | 'interface' | '@' 'interface' )"`
	Name       string      `parser:"@Ident"`
	TypeParams *TypeParams `parser:"@@?"`
	Extends    []*Type     `parser:"( 'extends' @@ ( ',' @@ )* )?"`
	Implements []*Type     `parser:"( 'implements' @@ ( ',' @@ )* )?"`
	Body       *ClassBody  `parser:"@@"`
}

// EnumDecl is an enum with its constants and optional members.
type EnumDecl struct {
	Node

	Name       string          `parser:"'enum' @Ident"`
	Implements []*Type         `parser:"( 'implements' @@ ( ',' @@ )* )?"`
	Constants  []*EnumConstant `parser:"'{' ( @@ ( ',' @@ )* )? ','?"`
	Members    []*Member       `parser:"( ';' @@* )? '}'"`
}

// EnumConstant is one enum value.
type EnumConstant struct {
	Node

	Annotations []*Annotation `parser:"@@*"`
	Name        string        `parser:"@Ident"`
	Args        *Args         `parser:"@@?"`
	Body        *ClassBody    `parser:"@@?"`
}

// ClassBody is the braced member list of a class or anonymous class.
type ClassBody struct {
	Node

	Members []*Member `parser:"'{' @@* '}'"`
}

// Member is one class body entry.
type Member struct {
	Node

	Empty       bool         `parser:"  @';'"`
	Initializer *Initializer `parser:"| @@"`
	Decl        *MemberDecl  `parser:"| @@"`
}

// Initializer is an instance or static initializer block.
type Initializer struct {
	Static bool   `parser:"@'static'?"`
	Body   *Block `parser:"@@"`
}

// MemberDecl is a modified nested type, constructor, method or field.
type MemberDecl struct {
	Node

	Modifiers   []*Modifier  `parser:"@@*"`
	Class       *ClassDecl   `parser:"( @@"`
	Enum        *EnumDecl    `parser:"| @@"`
	Constructor *Constructor `parser:"| @@"`
	Method      *Method      `parser:"| @@"`
	Field       *Field       `parser:"| @@ )"`
}

// Constructor is a constructor declaration.
type Constructor struct {
	Node

	TypeParams *TypeParams `parser:"@@?"`
	Name       string      `parser:"@Ident"`
	Params     *Params     `parser:"@@"`
	Throws     []*Type     `parser:"( 'throws' @@ ( ',' @@ )* )?"`
	Body       *Block      `parser:"@@"`
}

// Method is a method declaration. Body is nil for abstract methods.
type Method struct {
	Node

	TypeParams *TypeParams   `parser:"@@?"`
	Result     *Type         `parser:"@@"`
	Name       string        `parser:"@Ident"`
	Params     *Params       `parser:"@@"`
	Dims       string        `parser:"@( '[' ']' )*"`
	Throws     []*Type       `parser:"( 'throws' @@ ( ',' @@ )* )?"`
	Body       *Block        `parser:"( @@"`
	Default    *ElementValue `parser:"| ( 'default' @@ )? ';' )"`
}

// Field declares one or more fields.
type Field struct {
	Node

	Type        *Type         `parser:"@@"`
	Declarators []*Declarator `parser:"@@ ( ',' @@ )*"`

	Terminator
}

// Params is a parenthesized parameter list.
type Params struct {
	List []*Param `parser:"'(' ( @@ ( ',' @@ )* )? ')'"`
}

// Param is a formal parameter.
type Param struct {
	Modifiers []*Modifier `parser:"@@*"`
	Type      *Type       `parser:"@@"`
	Variadic  bool        `parser:"@'...'?"`
	Name      string      `parser:"@Ident"`
	Dims      string      `parser:"@( '[' ']' )*"`
}

// TypeParams is a generic parameter list.
type TypeParams struct {
	List []*TypeParam `parser:"'<' @@ ( ',' @@ )* '>'"`
}

// TypeParam is one generic parameter with optional bounds.
type TypeParam struct {
	Annotations []*Annotation `parser:"@@*"`
	Name        string        `parser:"@Ident"`
	Bounds      []*Type       `parser:"( 'extends' @@ ( '&' @@ )* )?"`
}

// =============================================================================
// Types
// =============================================================================

// Type is a primitive or class type with array dimensions.
type Type struct {
	Primitive string     `parser:"( @( 'boolean' | 'byte' | 'char' | 'short' | 'int' | 'long' | 'float' | 'double' | 'void' )"`
	Class     *ClassType `parser:"| @@ )"`
	Dims      string     `parser:"@( '[' ']' )*"`
}

func (t *Type) String() string {
	if t == nil {
		return ""
	}

	if t.Primitive != "" {
		return t.Primitive + t.Dims
	}

	return t.Class.String() + t.Dims
}

// ClassType is a possibly qualified, possibly parameterized class name.
type ClassType struct {
	Parts []*TypePart `parser:"@@ ( '.' @@ )*"`
}

func (c *ClassType) String() string {
	names := make([]string, len(c.Parts))
	for i, p := range c.Parts {
		names[i] = p.Name
	}

	return strings.Join(names, ".")
}

// TypePart is one segment of a class type.
type TypePart struct {
	Name string    `parser:"@Ident"`
	Args *TypeArgs `parser:"@@?"`
}

// TypeArgs is a type argument list. It may be empty ("<>").
type TypeArgs struct {
	List []*TypeArg `parser:"'<' ( @@ ( ',' @@ )* )? '>'"`
}

// TypeArg is a type or a wildcard with an optional bound.
type TypeArg struct {
	Wildcard  bool   `parser:"( @'?'"`
	BoundKind string `parser:"  ( @( 'extends' | 'super' )"`
	Bound     *Type  `parser:"    @@ )?"`
	Type      *Type  `parser:"| @@ )"`
}

// =============================================================================
// Statements
// =============================================================================

// Block is a braced statement list.
type Block struct {
	Node

	Statements []*Statement `parser:"'{' @@* '}'"`
}

// Statement is any statement. Exactly one field is set.
type Statement struct {
	Node

	Block        *Block        `parser:"  @@"`
	Empty        bool          `parser:"| @';'"`
	If           *If           `parser:"| @@"`
	While        *While        `parser:"| @@"`
	Do           *Do           `parser:"| @@"`
	For          *For          `parser:"| @@"`
	Switch       *Switch       `parser:"| @@"`
	Return       *Return       `parser:"| @@"`
	Throw        *Throw        `parser:"| @@"`
	Jump         *Jump         `parser:"| @@"`
	Try          *Try          `parser:"| @@"`
	Synchronized *Synchronized `parser:"| @@"`
	Assert       *Assert       `parser:"| @@"`
	Labeled      *Labeled      `parser:"| @@"`
	Type         *TypeDecl     `parser:"| @@"`
	LocalVar     *LocalVar     `parser:"| @@"`
	Expr         *ExprStmt     `parser:"| @@"`
}

// If is an if statement with an optional else branch.
type If struct {
	Cond *Expr      `parser:"'if' '(' @@ ')'"`
	Then *Statement `parser:"@@"`
	Else *Statement `parser:"( 'else' @@ )?"`
}

// While is a while loop.
type While struct {
	Cond *Expr      `parser:"'while' '(' @@ ')'"`
	Body *Statement `parser:"@@"`
}

// Do is a do-while loop.
type Do struct {
	Node

	Body *Statement `parser:"'do' @@"`
	Cond *Expr      `parser:"'while' '(' @@ ')'"`

	Terminator
}

// For is a classic or enhanced for loop.
type For struct {
	Each    *ForEach    `parser:"'for' '(' ( @@"`
	Classic *ForClassic `parser:"| @@ ) ')'"`
	Body    *Statement  `parser:"@@"`
}

// ForEach is the header of an enhanced for loop.
type ForEach struct {
	Modifiers []*Modifier `parser:"@@*"`
	Type      *Type       `parser:"@@"`
	Name      string      `parser:"@Ident ':'"`
	Iterable  *Expr       `parser:"@@"`
}

// ForClassic is the header of a three-clause for loop.
type ForClassic struct {
	InitVar   *VarDecl `parser:"( @@"`
	InitExprs []*Expr  `parser:"| @@ ( ',' @@ )* )? ';'"`
	Cond      *Expr    `parser:"@@? ';'"`
	Update    []*Expr  `parser:"( @@ ( ',' @@ )* )?"`
}

// Switch is a switch statement with colon or arrow labels.
type Switch struct {
	Subject *Expr          `parser:"'switch' '(' @@ ')' '{'"`
	Groups  []*SwitchGroup `parser:"@@* '}'"`
}

// SwitchGroup is one or more labels followed by statements.
type SwitchGroup struct {
	Labels []*SwitchLabel `parser:"@@+"`
	Body   []*Statement   `parser:"@@*"`
}

// SwitchLabel is "case v1, v2:" or "default:", or the arrow forms.
type SwitchLabel struct {
	Default bool         `parser:"( @'default'"`
	Values  []*CaseValue `parser:"| 'case' @@ ( ',' @@ )* )"`
	Arrow   string       `parser:"@( ':' | '->' )"`
}

// CaseValue is a constant case label.
type CaseValue struct {
	Negative bool     `parser:"@'-'?"`
	Literal  *Literal `parser:"( @@"`
	Name     []string `parser:"| @Ident ( '.' @Ident )* )"`
}

// Return is a return statement.
type Return struct {
	Node

	Value *Expr `parser:"'return' @@?"`

	Terminator
}

// Throw is a throw statement.
type Throw struct {
	Node

	Value *Expr `parser:"'throw' @@"`

	Terminator
}

// Jump is a break or continue with an optional label.
type Jump struct {
	Node

	Keyword string `parser:"@( 'break' | 'continue' )"`
	Label   string `parser:"@Ident?"`

	Terminator
}

// Try is a try statement, optionally with resources.
type Try struct {
	Resources []*Resource `parser:"'try' ( '(' @@ ( ';' @@ )* ';'? ')' )?"`
	Body      *Block      `parser:"@@"`
	Catches   []*Catch    `parser:"@@*"`
	Finally   *Block      `parser:"( 'finally' @@ )?"`
}

// Resource is a try-with-resources entry.
type Resource struct {
	Modifiers []*Modifier `parser:"@@*"`
	Type      *Type       `parser:"( @@"`
	Name      string      `parser:"  @Ident '='"`
	Init      *Expr       `parser:"  @@"`
	Ref       *Expr       `parser:"| @@ )"`
}

// Catch is a catch clause with one or more exception types.
type Catch struct {
	Modifiers []*Modifier `parser:"'catch' '(' @@*"`
	Types     []*Type     `parser:"@@ ( '|' @@ )*"`
	Name      string      `parser:"@Ident ')'"`
	Body      *Block      `parser:"@@"`
}

// Synchronized is a synchronized block.
type Synchronized struct {
	Lock *Expr  `parser:"'synchronized' '(' @@ ')'"`
	Body *Block `parser:"@@"`
}

// Assert is an assert statement.
type Assert struct {
	Node

	Cond    *Expr `parser:"'assert' @@"`
	Message *Expr `parser:"( ':' @@ )?"`

	Terminator
}

// Labeled is a statement preceded by a label.
type Labeled struct {
	Label string     `parser:"@Ident ':'"`
	Body  *Statement `parser:"@@"`
}

// VarDecl declares one or more local variables.
type VarDecl struct {
	Modifiers   []*Modifier   `parser:"@@*"`
	Type        *Type         `parser:"@@"`
	Declarators []*Declarator `parser:"@@ ( ',' @@ )*"`
}

// LocalVar is a local variable declaration statement.
type LocalVar struct {
	Node

	Decl *VarDecl `parser:"@@"`

	Terminator
}

// Declarator is one declared name with an optional initializer.
type Declarator struct {
	Name string   `parser:"@Ident"`
	Dims string   `parser:"@( '[' ']' )*"`
	Init *VarInit `parser:"( '=' @@ )?"`
}

// VarInit is an array initializer or an expression.
type VarInit struct {
	Array *ArrayInit `parser:"  @@"`
	Expr  *Expr      `parser:"| @@"`
}

// ArrayInit is a braced list of initializers.
type ArrayInit struct {
	Values []*VarInit `parser:"'{' ( @@ ( ',' @@ )* )? ','? '}'"`
}

// ExprStmt is an expression used as a statement.
type ExprStmt struct {
	Node

	Expr *Expr `parser:"@@"`

	Terminator
}

// =============================================================================
// Expressions
// =============================================================================

// Expr is a conditional expression with an optional assignment.
type Expr struct {
	Cond   *Ternary `parser:"@@"`
	Op     string   `parser:"( @( '=' | '+=' | '-=' | '*=' | '/=' | '%=' | '&=' | '|=' | '^=' | '<<=' | '>' '>' '>' '=' | '>' '>' '=' )"`
	Assign *Expr    `parser:"  @@ )?"`
}

// Ternary is a binary expression with an optional conditional branch.
type Ternary struct {
	Binary *Binary `parser:"@@"`
	Then   *Expr   `parser:"( '?' @@"`
	Else   *Expr   `parser:"  ':' @@ )?"`
}

// Binary is a flat operator chain. Precedence is not resolved.
type Binary struct {
	Left *Unary       `parser:"@@"`
	Rest []*BinaryRHS `parser:"@@*"`
}

// BinaryRHS is an operator with its right operand, or an instanceof test.
type BinaryRHS struct {
	InstanceOf *Type  `parser:"( 'instanceof' 'final'? @@"`
	Binding    string `parser:"  @Ident?"`
	Op         string `parser:"| @( '||' | '&&' | '|' | '^' | '&' | '==' | '!=' | '<=' | '<<' | '<' | '>' '>' '>' | '>' '>' | '>' '=' | '>' | '+' | '-' | '*' | '/' | '%' )"`
	Right      *Unary `parser:"  @@ )"`
}

// Unary is a postfix expression with prefix operators.
type Unary struct {
	Prefix  []string `parser:"@( '+' | '-' | '!' | '~' | '++' | '--' )*"`
	Postfix *Postfix `parser:"@@"`
}

// Postfix is a primary followed by selectors.
type Postfix struct {
	Primary   *Primary    `parser:"@@"`
	Selectors []*Selector `parser:"@@*"`
	Suffix    string      `parser:"@( '++' | '--' )?"`
}

// Selector is a member access, index or method reference.
type Selector struct {
	Member    *MemberSelector `parser:"  '.' @@"`
	Index     *Expr           `parser:"| '[' @@ ']'"`
	MethodRef string          `parser:"| '::' @( Ident | 'new' )"`
}

// MemberSelector is the part after a ".".
type MemberSelector struct {
	TypeArgs *TypeArgs `parser:"@@?"`
	Name     string    `parser:"( @( Ident | 'this' | 'class' | 'super' )"`
	Args     *Args     `parser:"  @@?"`
	New      *Creator  `parser:"| 'new' @@ )"`
}

// Primary is an expression atom.
type Primary struct {
	Lambda   *Lambda       `parser:"  @@"`
	Cast     *Cast         `parser:"| @@"`
	Paren    *Expr         `parser:"| '(' @@ ')'"`
	Literal  *Literal      `parser:"| @@"`
	New      *Creator      `parser:"| 'new' @@"`
	Self     *SelfRef      `parser:"| @@"`
	ClassLit *ClassLiteral `parser:"| @@"`
	Name     *NameRef      `parser:"| @@"`
}

// Lambda is a lambda expression.
type Lambda struct {
	Param  string         `parser:"( @Ident"`
	Params []*LambdaParam `parser:"| '(' ( @@ ( ',' @@ )* )? ')' ) '->'"`
	Block  *Block         `parser:"( @@"`
	Expr   *Expr          `parser:"| @@ )"`
}

// LambdaParam is a typed or inferred lambda parameter.
type LambdaParam struct {
	Modifiers []*Modifier `parser:"@@*"`
	Type      *Type       `parser:"( @@"`
	Name      string      `parser:"  @Ident | @Ident )"`
}

// Cast is a parenthesized type applied to an operand.
type Cast struct {
	Type    *Type  `parser:"'(' @@ ')'"`
	Operand *Unary `parser:"@@"`
}

// Literal is a number, string, char, boolean or null literal.
type Literal struct {
	Value string `parser:"@( Number | String | Char | 'true' | 'false' | 'null' )"`
}

// SelfRef is this or super, optionally invoked.
type SelfRef struct {
	Keyword string `parser:"@( 'this' | 'super' )"`
	Args    *Args  `parser:"@@?"`
}

// ClassLiteral is a primitive class literal such as int.class.
type ClassLiteral struct {
	Type string `parser:"@( 'boolean' | 'byte' | 'char' | 'short' | 'int' | 'long' | 'float' | 'double' | 'void' )"`
	Dims string `parser:"@( '[' ']' )* '.' 'class'"`
}

// NameRef is an identifier, optionally invoked.
type NameRef struct {
	Name string `parser:"@Ident"`
	Args *Args  `parser:"@@?"`
}

// Creator follows "new": an array or an object with an optional body.
type Creator struct {
	Primitive string     `parser:"( @( 'boolean' | 'byte' | 'char' | 'short' | 'int' | 'long' | 'float' | 'double' )"`
	Class     *ClassType `parser:"| @@ )"`
	Dims      []*DimExpr `parser:"( @@+"`
	Init      *ArrayInit `parser:"  @@?"`
	Args      *Args      `parser:"| @@"`
	Body      *ClassBody `parser:"  @@? )"`
}

// DimExpr is one array dimension, sized or not.
type DimExpr struct {
	Size  *Expr `parser:"'[' @@?"`
	Close bool  `parser:"@']'"`
}

// Args is a parenthesized argument list.
type Args struct {
	List  []*Expr `parser:"'(' ( @@ ( ',' @@ )* )?"`
	Close bool    `parser:"@')'"`
}
