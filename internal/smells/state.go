package smells

import (
	"sort"
	"strings"
)

// chainLink is one statement extending a string concatenation chain.
type chainLink struct {
	line  int
	piece string
	aug   bool
}

// appendCall is one recv.append(...) occurrence. ok is false when the call
// had no positional argument.
type appendCall struct {
	line  int
	value string
	ok    bool
}

// state is the cross-node memory accumulated during one traversal. It only
// grows; nothing is rolled back when the walk leaves a scope.
type state struct {
	sortedArgs   map[string]bool
	concatChains map[string][]chainLink
	appendRuns   map[string][]appendCall
	declared     map[string]int
	loopTargets  map[string]bool
	read         map[string]bool
	unused       map[string]bool

	issues []Issue
	edits  map[int]Edit
}

func newState() *state {
	return &state{
		sortedArgs:   make(map[string]bool),
		concatChains: make(map[string][]chainLink),
		appendRuns:   make(map[string][]appendCall),
		declared:     make(map[string]int),
		loopTargets:  make(map[string]bool),
		read:         make(map[string]bool),
		unused:       make(map[string]bool),
		edits:        make(map[int]Edit),
	}
}

// declare records the first assignment to name. Later assignments are
// ignored. A name already read earlier in the walk is never a candidate.
func (s *state) declare(name string, line int) {
	if _, ok := s.declared[name]; ok {
		return
	}
	s.declared[name] = line
	if !s.loopTargets[name] && !s.read[name] {
		s.unused[name] = true
	}
}

func (s *state) bindLoopTarget(name string) {
	s.loopTargets[name] = true
}

func (s *state) markRead(name string) {
	s.read[name] = true
	delete(s.unused, name)
}

func (s *state) addConcat(target string, link chainLink) []chainLink {
	s.concatChains[target] = append(s.concatChains[target], link)
	return s.concatChains[target]
}

func (s *state) addAppend(recv string, call appendCall) []appendCall {
	s.appendRuns[recv] = append(s.appendRuns[recv], call)
	return s.appendRuns[recv]
}

// sortedBefore records arg as sorted and reports whether it already was.
func (s *state) sortedBefore(arg string) bool {
	seen := s.sortedArgs[arg]
	s.sortedArgs[arg] = true
	return seen
}

func (s *state) report(issue Issue) {
	s.issues = append(s.issues, issue)
}

// register stores e under key, replacing any earlier edit with that key.
func (s *state) register(key int, e Edit) {
	s.edits[key] = e
}

// sweepUnused reports every declared name that was never read, ordered by
// declaration line then name.
func (s *state) sweepUnused() {
	names := make([]string, 0, len(s.unused))
	for name := range s.unused {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		li, lj := s.declared[names[i]], s.declared[names[j]]
		if li != lj {
			return li < lj
		}
		return names[i] < names[j]
	})
	for _, name := range names {
		s.report(unusedIssue(name, s.declared[name]))
	}
}

// sortedIssues returns the issues ordered by line, keeping detection order
// within a line.
func (s *state) sortedIssues() []Issue {
	issues := make([]Issue, len(s.issues))
	copy(issues, s.issues)
	sort.SliceStable(issues, func(i, j int) bool {
		return issues[i].Line < issues[j].Line
	})
	return issues
}

func lineSpan[T any](items []T, line func(T) int) (int, int) {
	lo, hi := line(items[0]), line(items[0])
	for _, item := range items[1:] {
		l := line(item)
		if l < lo {
			lo = l
		}
		if l > hi {
			hi = l
		}
	}
	return lo, hi
}

// indentBlock prefixes every line of text with four spaces.
func indentBlock(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = "    " + line
		}
	}
	return strings.Join(lines, "\n")
}
