package codegen

import "strings"

// AssemblyBuffer collects the three regions of the output file. Regions are
// append-only and only read by String.
type AssemblyBuffer struct {
	header strings.Builder
	data   strings.Builder
	text   strings.Builder
}

// NewAssemblyBuffer writes the fixed header and section openers for target.
func NewAssemblyBuffer(target *Target) *AssemblyBuffer {
	b := &AssemblyBuffer{}
	b.header.WriteString("global " + target.EntryPoint + "\n")
	b.header.WriteString(target.EntryPoint + ":\n")
	b.data.WriteString("section .data\n")
	b.text.WriteString("section .text\n")
	b.text.WriteString(target.BodyLabel + ":\n")
	return b
}

// Data appends one line to the data section.
func (b *AssemblyBuffer) Data(line string) {
	b.data.WriteString(line)
	b.data.WriteByte('\n')
}

// Text appends one line to the text section.
func (b *AssemblyBuffer) Text(line string) {
	b.text.WriteString(line)
	b.text.WriteByte('\n')
}

// String concatenates header, data and text in that order.
func (b *AssemblyBuffer) String() string {
	var out strings.Builder
	out.Grow(b.header.Len() + b.data.Len() + b.text.Len())
	out.WriteString(b.header.String())
	out.WriteString(b.data.String())
	out.WriteString(b.text.String())
	return out.String()
}
