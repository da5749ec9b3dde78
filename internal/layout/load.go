package layout

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// MinWeight replaces a malformed visual weight so the rest of the venue can
// still be laid out.
const MinWeight = 0.1

// TreeNode is the nested form of a layout used for import and export.
type TreeNode struct {
	ID           string     `json:"id" validate:"required,max=128"`
	Kind         Kind       `json:"kind" validate:"omitempty,oneof=VENUE STAND TIER SECTION ROW SEAT"`
	Name         string     `json:"name" validate:"max=255"`
	VisualWeight float64    `json:"visualWeight" validate:"gte=0"`
	Status       Status     `json:"status,omitempty" validate:"omitempty,oneof=ACTIVE BLOCKED"`
	Style        Style      `json:"style"`
	SeatNumber   int        `json:"seatNumber,omitempty" validate:"gte=0"`
	Placement    *Placement `json:"placement,omitempty"`
	Curve        float64    `json:"curve,omitempty"`
	Children     []TreeNode `json:"children,omitempty" validate:"-"`
}

func (tn TreeNode) node() Node {
	return Node{
		ID:           tn.ID,
		Kind:         tn.Kind,
		Name:         tn.Name,
		VisualWeight: tn.VisualWeight,
		Status:       tn.Status,
		Style:        tn.Style,
		SeatNumber:   tn.SeatNumber,
		Placement:    tn.Placement,
		Curve:        tn.Curve,
	}
}

var validate = validator.New()

// Load builds a model from a nested tree. Malformed nodes never abort the
// import: bad weights and statuses are repaired, nodes that cannot be placed
// are skipped with their subtree, and each case is reported as an Issue. An
// error is returned only when the root itself is unusable.
func Load(root TreeNode, layoutType LayoutType) (*Model, []Issue, error) {
	var issues []Issue

	if root.ID == "" {
		return nil, nil, fmt.Errorf("%w: venue id is required", ErrInvalidNode)
	}
	rootNode := root.node()
	if rootNode.VisualWeight != 0 && ValidateWeight(rootNode.VisualWeight) != nil {
		issues = append(issues, Issue{NodeID: root.ID, Reason: "invalid venue weight replaced with default"})
		rootNode.VisualWeight = DefaultWeight
	}
	if rootNode.Status != "" && rootNode.Status != StatusActive && rootNode.Status != StatusBlocked {
		issues = append(issues, Issue{NodeID: root.ID, Reason: fmt.Sprintf("unknown status %q treated as active", rootNode.Status)})
		rootNode.Status = StatusActive
	}
	m, err := New(rootNode, layoutType)
	if err != nil {
		return nil, nil, err
	}

	var visit func(parentID string, tn TreeNode)
	visit = func(parentID string, tn TreeNode) {
		for _, child := range tn.Children {
			node, skip := repair(child, &issues)
			if skip {
				continue
			}
			if err := m.AddNode(node, parentID); err != nil {
				issues = append(issues, Issue{NodeID: child.ID, Reason: err.Error()})
				continue
			}
			visit(node.ID, child)
		}
	}
	visit(root.ID, root)

	return m, issues, nil
}

// repair validates one imported node, fixing what can be fixed. skip is
// true when the node and its subtree must be dropped.
func repair(tn TreeNode, issues *[]Issue) (Node, bool) {
	n := tn.node()
	report := func(format string, args ...any) {
		*issues = append(*issues, Issue{NodeID: n.ID, Reason: fmt.Sprintf(format, args...)})
	}

	if err := validate.Struct(tn); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			report("%v", err)
			return n, true
		}
		for _, fe := range verrs {
			switch fe.Field() {
			case "VisualWeight":
				report("visual weight %v replaced with minimum", n.VisualWeight)
				n.VisualWeight = MinWeight
			case "Status":
				report("unknown status %q treated as active", n.Status)
				n.Status = StatusActive
			case "SeatNumber":
				report("negative seat number cleared")
				n.SeatNumber = 0
			default:
				report("field %s failed %s", fe.Field(), fe.Tag())
				return n, true
			}
		}
	}
	if n.VisualWeight != 0 && ValidateWeight(n.VisualWeight) != nil {
		report("visual weight %v replaced with minimum", n.VisualWeight)
		n.VisualWeight = MinWeight
	}
	if n.Kind == "" || n.Kind == KindVenue {
		report("missing or nested venue kind")
		return n, true
	}
	return n, false
}
