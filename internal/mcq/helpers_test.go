package mcq

import "fmt"

func sampleQuestion(n int) Question {
	return Question{
		Question: fmt.Sprintf("What is fact %d?", n),
		Options: map[string]string{
			"A": fmt.Sprintf("alpha %d", n),
			"B": fmt.Sprintf("beta %d", n),
			"C": fmt.Sprintf("gamma %d", n),
			"D": fmt.Sprintf("delta %d", n),
		},
		CorrectAnswer: fmt.Sprintf("B) beta %d", n),
	}
}

func samplePool(n int) Pool {
	p := Pool{}
	for i := 1; i <= n; i++ {
		p[i] = sampleQuestion(i)
	}
	return p
}
