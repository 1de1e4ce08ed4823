package goap

import (
	"fmt"
	"strings"
)

// FormatState lists the atoms ws pins, one per line, as "+name" for true and
// "-name" for false, in atom index order.
func (ap *ActionPlanner) FormatState(ws WorldState) string {
	var b strings.Builder
	for i, name := range ap.atomNames {
		v, known := ws.Value(i)
		if !known {
			continue
		}
		if v {
			b.WriteString("+")
		} else {
			b.WriteString("-")
		}
		b.WriteString(name)
		b.WriteString("\n")
	}
	return b.String()
}

// String renders the action table: "name - cost" followed by "  atom==value"
// preconditions and "  atom:=value" effects.
func (ap *ActionPlanner) String() string {
	var b strings.Builder
	for _, act := range ap.Actions() {
		fmt.Fprintf(&b, "%s - %d\n", act.Name, act.Cost)
		for i, name := range ap.atomNames {
			if v, known := act.Precondition.Value(i); known {
				fmt.Fprintf(&b, "  %s==%t\n", name, v)
			}
		}
		for i, name := range ap.atomNames {
			if v, known := act.Effect.Value(i); known {
				fmt.Fprintf(&b, "  %s:=%t\n", name, v)
			}
		}
	}
	return b.String()
}

// FormatPlan renders p as numbered steps, each followed by its resulting state.
func (ap *ActionPlanner) FormatPlan(p *Plan) string {
	var b strings.Builder
	fmt.Fprintf(&b, "plan cost: %d\n", p.Cost())
	i := 0
	for action, ws := range p.All() {
		fmt.Fprintf(&b, "%d: %s\n", i, action)
		b.WriteString(ap.FormatState(ws))
		i++
	}
	return b.String()
}
