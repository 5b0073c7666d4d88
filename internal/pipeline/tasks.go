package pipeline

import "strings"

// renderTaskList returns one "- [ ]" / "- [x]" line per <ac:task> item,
// in document order. At most limit items are read.
func renderTaskList(block string, limit int) rendering {
	var lines []string
	pos := 0
	for len(lines) < limit {
		el, status := nextElement(block, pos, "ac:task")
		if status != scanFound {
			break
		}
		pos = el.end
		if el.selfClosing || el.unterminated {
			continue
		}
		lines = append(lines, taskLine(el.block(block)))
	}
	if len(lines) == 0 {
		return rendering{}
	}
	return blockMD(strings.Join(lines, "\n"))
}

func taskLine(task string) string {
	box := "- [ ] "
	if status, ok := inner(task, "ac:task-status"); ok && strings.TrimSpace(textContent(status)) == "complete" {
		box = "- [x] "
	}
	body, _ := inner(task, "ac:task-body")
	return box + strings.Join(strings.Fields(textContent(body)), " ")
}
