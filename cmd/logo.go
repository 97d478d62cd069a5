package cmd

import "fmt"

const asciiLogo = `
 ██╗     ██╗   ██╗███╗   ███╗ █████╗
 ██║     ██║   ██║████╗ ████║██╔══██╗
 ██║     ██║   ██║██╔████╔██║███████║
 ██║     ██║   ██║██║╚██╔╝██║██╔══██║
 ███████╗╚██████╔╝██║ ╚═╝ ██║██║  ██║
 ╚══════╝ ╚═════╝ ╚═╝     ╚═╝╚═╝  ╚═╝`

// PrintLogo prints the Luma ASCII art logo.
func PrintLogo() {
	fmt.Print(asciiLogo + "\n\n")
}
