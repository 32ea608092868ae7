package mechanism

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// genJointType generates one of the four joint classes.
func genJointType() gopter.Gen {
	return gen.OneConstOf(Revolute, Prismatic, HigherPair, Fixed)
}

// buildChain creates a connected chain of n elements joined by the given
// joint types (len(types) joints, wrapping element indices).
func buildChain(n int, types []JointType) *Graph {
	g := NewGraph()
	for i := 0; i < n; i++ {
		g.AddElement("L", RoleNone)
	}
	for i, t := range types {
		a := ElementID(i % n)
		b := ElementID((i + 1) % n)
		if a == b {
			continue
		}
		g.AddJoint(t, a, b, "") //nolint:errcheck // endpoints always exist
	}
	return g
}

// TestGraphProperties verifies invariants that must hold for any graph the
// search can construct.
func TestGraphProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)

	// Property 1: DOF always matches a direct count over the joint multiset.
	properties.Property("DOF matches Grubler over joint counts", prop.ForAll(
		func(n int, types []JointType) bool {
			g := buildChain(n, types)
			dof, err := g.DegreesOfFreedom()
			if err != nil {
				return n < 2
			}
			var fixed, lower, higher int
			for _, j := range g.Joints() {
				switch j.Type {
				case Fixed:
					fixed++
				case Revolute, Prismatic:
					lower++
				case HigherPair:
					higher++
				}
			}
			return dof == 3*(n-fixed-1)-2*lower-higher
		},
		gen.IntRange(2, 8),
		gen.SliceOf(genJointType()),
	))

	// Property 2: cloning then editing the clone never changes the parent.
	properties.Property("clone edits leave parent untouched", prop.ForAll(
		func(n int, types []JointType) bool {
			g := buildChain(n, types)
			sig := g.Signature()
			elems, joints := g.ElementCount(), g.JointCount()

			c := g.Clone()
			added := c.AddElement("Extra", RoleNone)
			c.AddJoint(Revolute, 0, added, "") //nolint:errcheck

			return g.Signature() == sig &&
				g.ElementCount() == elems &&
				g.JointCount() == joints
		},
		gen.IntRange(2, 8),
		gen.SliceOf(genJointType()),
	))

	// Property 3: signatures are deterministic across recomputation and
	// shared by clones.
	properties.Property("signature is stable and clone-invariant", prop.ForAll(
		func(n int, types []JointType) bool {
			g := buildChain(n, types)
			return g.Signature() == g.Signature() && g.Clone().Signature() == g.Signature()
		},
		gen.IntRange(2, 8),
		gen.SliceOf(genJointType()),
	))

	// Property 4: a full chain of joints is connected.
	properties.Property("cyclic chains are connected", prop.ForAll(
		func(n int) bool {
			types := make([]JointType, n)
			for i := range types {
				types[i] = Revolute
			}
			return buildChain(n, types).IsConnected()
		},
		gen.IntRange(2, 10),
	))

	properties.TestingRun(t)
}
