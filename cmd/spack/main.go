package main

import "github.com/jhdavis8/spack/cmd/spack/internal"

func main() {
	internal.Execute()
}
