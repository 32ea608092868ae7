package mechanism

// ElementID identifies a rigid element within a single graph.
// IDs are assigned sequentially starting at 0 and are stable across Clone.
type ElementID int

// JointID identifies a joint within a single graph.
type JointID int

// Role tags an element with its function in the mechanism.
type Role string

const (
	RoleNone   Role = ""
	RoleInput  Role = "input"
	RoleOutput Role = "output"
	RoleGround Role = "ground"
)

// JointType is the kinematic pair class of a joint.
type JointType string

const (
	// Revolute is a lower pair removing 1 relative DOF (hinge).
	Revolute JointType = "R"
	// Prismatic is a lower pair removing 1 relative DOF (slider).
	Prismatic JointType = "P"
	// HigherPair removes 2 relative DOF (cam contact, gear mesh).
	HigherPair JointType = "X"
	// Fixed removes all relative DOF (rigid attachment, ground anchor).
	Fixed JointType = "F"
)

// Valid reports whether t is one of the four supported joint classes.
func (t JointType) Valid() bool {
	switch t {
	case Revolute, Prismatic, HigherPair, Fixed:
		return true
	}
	return false
}

// IsLowerPair reports whether the joint counts toward n1 in Grubler's formula.
func (t JointType) IsLowerPair() bool {
	return t == Revolute || t == Prismatic
}

// Element is a rigid body or functional part. Immutable once created.
type Element struct {
	ID    ElementID
	Label string
	Role  Role
}

// Joint is a typed connection between exactly two elements. Tag carries a
// behavior marker ("stopper", "spring", "damper", "variable") consumed only
// by the elemental-function validator, never by the DOF formula.
type Joint struct {
	ID   JointID
	Type JointType
	A    ElementID
	B    ElementID
	Tag  string
}

// Other returns the joint endpoint opposite to id.
func (j Joint) Other(id ElementID) ElementID {
	if j.A == id {
		return j.B
	}
	return j.A
}

// Incident reports whether id is one of the joint's endpoints.
func (j Joint) Incident(id ElementID) bool {
	return j.A == id || j.B == id
}
