package elo

import "math"

// Calculate returns the post-match ratings for the winner and loser of a
// single game. Expectation is logistic with a 400-point spread; the k
// factor scales how far a single result moves both ratings.
func Calculate(winnerElo, loserElo float64, k int) (int, int) {
	probWinner := 1 / (1 + math.Pow(10, (loserElo-winnerElo)/400))
	probLoser := 1 - probWinner

	newWinnerElo := winnerElo + float64(k)*(1-probWinner)
	newLoserElo := loserElo + float64(k)*(0-probLoser)

	return int(math.Round(newWinnerElo)), int(math.Round(newLoserElo))
}
