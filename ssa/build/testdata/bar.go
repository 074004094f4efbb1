package main

func bar(n, m int) int {
	s := 0
	for i := 0; i < n; i++ {
		for j := 0; j < m; j++ {
			s += i * j
		}
	}
	return s
}
