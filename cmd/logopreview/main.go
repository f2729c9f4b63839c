package main

import (
	"fmt"
)

// ANSI color helpers
const (
	coral = "\033[38;2;255;111;97m"
	gray  = "\033[38;5;242m"
	white = "\033[1;37m"
	reset = "\033[0m"
	bold  = "\033[1m"
	dim   = "\033[2m"
)

func main() {
	info1 := white + "Postcraft " + gray + "v0.1.0" + reset
	info2 := gray + "localhost:8000 · default_user" + reset

	fmt.Println()
	fmt.Println(bold + "═══ Pick a mark for the welcome banner ═══" + reset)

	// ── Option A: Diamond ──
	fmt.Println()
	fmt.Println(dim + "Option A — Diamond" + reset)
	fmt.Println()
	fmt.Printf("   %s◆%s %s\n", coral, reset, info1)
	fmt.Printf("     %s\n", info2)

	// ── Option B: Stacked frames ──
	fmt.Println()
	fmt.Println(dim + "Option B — Stacked frames" + reset)
	fmt.Println()
	fmt.Printf("   %s▛▀▜%s\n", coral, reset)
	fmt.Printf("   %s▌%s%s✦%s%s▐%s  %s\n", coral, reset, white, reset, coral, reset, info1)
	fmt.Printf("   %s▙▄▟%s  %s\n", coral, reset, info2)

	// ── Option C: Spark ──
	fmt.Println()
	fmt.Println(dim + "Option C — Spark" + reset)
	fmt.Println()
	fmt.Printf("   %s✦%s %s\n", coral, reset, info1)
	fmt.Printf("     %s\n", info2)

	// ── Option D: Pen nib ──
	fmt.Println()
	fmt.Println(dim + "Option D — Pen nib" + reset)
	fmt.Println()
	fmt.Printf("   %s▗▄▖%s\n", coral, reset)
	fmt.Printf("   %s▐%s%s◆%s%s▌%s  %s\n", gray, reset, coral, reset, gray, reset, info1)
	fmt.Printf("    %s▚▞%s   %s\n", gray, reset, info2)

	fmt.Println()
	fmt.Println(dim + "Which one? (A/B/C/D)" + reset)
	fmt.Println()
}
