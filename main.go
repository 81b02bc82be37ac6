// Command yonoox runs the product import service.
package main

import "github.com/yonox270/yonoox/cmd"

func main() {
	cmd.Execute()
}
