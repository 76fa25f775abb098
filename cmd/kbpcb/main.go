// kbpcb reads, rewrites and generates KiCad 4 keyboard boards.
package main

import "github.com/OpenTraceLab/OpenTraceKB/cmd/kbpcb/cmd"

func main() {
	cmd.Execute()
}
