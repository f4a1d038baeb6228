package job

import (
	"fmt"

	"jobdoctor/src/repair"
)

// Tag classifies a problem.
type Tag string

const (
	TagNoJob   Tag = "NOJOB"
	TagNotLink Tag = "NOTLINK"
	TagBroken  Tag = "BROKEN"
	TagOrder   Tag = "ORDER"
	TagStolen  Tag = "STOLEN"
	TagNoNum   Tag = "NONUM"
	TagNumBad  Tag = "NUMBAD"
	TagBadDate Tag = "BADDATE"
	TagNext    Tag = "NEXT"
)

// Problem is a single report. Path is the entry it is about, if any.
type Problem struct {
	Tag     Tag
	Message string
	Path    string
}

func NewProblem(tag Tag, path, format string, args ...interface{}) Problem {
	return Problem{Tag: tag, Path: path, Message: fmt.Sprintf(format, args...)}
}

func (p Problem) String() string {
	return fmt.Sprintf("%s: %s", p.Tag, p.Message)
}

// Solution is a proposed repair for the problem at index Problem.
type Solution struct {
	Problem int
	Message string
	Action  repair.Action
}

func NewSolution(action repair.Action, format string, args ...interface{}) Solution {
	return Solution{Message: fmt.Sprintf(format, args...), Action: action}
}

// Apply runs the action.
func (s Solution) Apply() error {
	return s.Action.Apply()
}

func (s Solution) String() string {
	return s.Message
}
