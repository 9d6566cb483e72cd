// Package practice implements the study loop: weighted random selection of
// the next word to quiz, the hint ladder and answer evaluation for a single
// attempt, and the resulting spaced-repetition review updates.
package practice
