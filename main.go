package main

import "ogre/cmd"

func main() {
	cmd.Execute()
}
