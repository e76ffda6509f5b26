package syntax

// MinFence is the shortest colon run that opens a container.
const MinFence = 3

// maxIndent is the deepest indentation a block directive may carry before
// the line becomes indented code.
const maxIndent = 3

// ScanContainerOpen matches an opening container fence. line holds a single
// line starting at absolute offset base.
func ScanContainerOpen(line []byte, base int) (Token, bool) {
	width, pos := leadingIndent(line)
	if width > maxIndent {
		return Token{}, false
	}
	run := colonRun(line[pos:])
	if run < MinFence {
		return Token{}, false
	}
	tok := Token{Kind: KindContainerOpen, Fence: run, Indent: width, Start: base + pos}
	i := pos + run
	n, ok := scanHead(line[i:], base+i, &tok)
	if !ok {
		return Token{}, false
	}
	i += n
	if !isBlankRest(line[i:]) {
		return Token{}, false
	}
	tok.Stop = base + i
	return tok, true
}

// ScanContainerClose matches a closing fence for a container opened with
// fence colons at indentation indent.
func ScanContainerClose(line []byte, base, fence, indent int) (Token, bool) {
	width, pos := leadingIndent(line)
	if width > indent || width > maxIndent {
		return Token{}, false
	}
	run := colonRun(line[pos:])
	if run < fence || run < MinFence {
		return Token{}, false
	}
	if !isBlankRest(line[pos+run:]) {
		return Token{}, false
	}
	return Token{
		Kind:   KindContainerClose,
		Fence:  run,
		Indent: width,
		Start:  base + pos,
		Stop:   base + pos + run,
	}, true
}

// ScanLeaf matches a leaf directive occupying a whole line. A third colon
// makes the line a container candidate instead.
func ScanLeaf(line []byte, base int) (Token, bool) {
	width, pos := leadingIndent(line)
	if width > maxIndent {
		return Token{}, false
	}
	if colonRun(line[pos:]) != 2 {
		return Token{}, false
	}
	tok := Token{Kind: KindLeaf, Indent: width, Start: base + pos}
	i := pos + 2
	n, ok := scanHead(line[i:], base+i, &tok)
	if !ok {
		return Token{}, false
	}
	i += n
	if !isBlankRest(line[i:]) {
		return Token{}, false
	}
	tok.Stop = base + i
	return tok, true
}

// ScanText matches a text directive at the start of b. The caller checks the
// preceding character; ScanText only rejects a second colon.
func ScanText(b []byte, base int) (Token, bool) {
	if len(b) < 2 || b[0] != ':' || b[1] == ':' {
		return Token{}, false
	}
	tok := Token{Kind: KindText, Start: base}
	n, ok := scanHead(b[1:], base+1, &tok)
	if !ok {
		return Token{}, false
	}
	tok.Stop = base + 1 + n
	return tok, true
}

// LineStartColonRun returns the colon run at the start of line after
// indentation of any width.
func LineStartColonRun(line []byte) int {
	_, pos := leadingIndent(line)
	return colonRun(line[pos:])
}

func leadingIndent(line []byte) (width, pos int) {
	for pos < len(line) {
		switch line[pos] {
		case ' ':
			width++
		case '\t':
			width += 4 - width%4
		default:
			return width, pos
		}
		pos++
	}
	return width, pos
}

func colonRun(b []byte) int {
	n := 0
	for n < len(b) && b[n] == ':' {
		n++
	}
	return n
}

func isBlankRest(b []byte) bool {
	for _, c := range b {
		if !isSpace(c) && !isLineEnd(c) {
			return false
		}
	}
	return true
}
