package main

func main() {
	println(foo(3), bar(2, 3))
}
