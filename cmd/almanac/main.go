// Command almanac keeps members' birthdays in the Chinese lunar calendar.
package main

import "github.com/mesh-intelligence/almanac/internal/cli"

func main() {
	cli.Execute()
}
