/*
Package markov implements fixed-order Markov chain models over token
sequences, kept entirely in memory.

A Model of order N maps every run of N consecutive tokens observed during
training to the tokens that immediately followed it, with occurrence counts.
Those counts drive exact next-token probabilities and weighted random
generation, with optional temperature and top-K sampling.

A Model follows a build-then-query lifecycle: feed it token sequences with
Train, then read it with Probability, Transitions, Stats, and Generate. It is
not safe for concurrent use.
*/
package markov
