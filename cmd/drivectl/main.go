// Command drivectl is the command-line interface for gestion-drive.
package main

import "github.com/datanorth/gestiondrive/internal/cli"

func main() {
	cli.Execute()
}
