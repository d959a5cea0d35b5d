/*
Package subcrack breaks monoalphabetic substitution ciphers over a 27 symbol
alphabet (space and the lowercase letters a-z) without knowing the key.

It learns a character-bigram model from a reference corpus, scores a
candidate key by the log-likelihood of the text it decrypts to, and walks the
space of keys with the Metropolis-Hastings algorithm, keeping the best key
seen. It finds a good key, not necessarily the true one; longer ciphertexts
and bigger corpora both help.


Usage

Train the model. Use _lots_ of data:

	trainer := subcrack.NewTrainer()
	err := trainer.Add(corpusFile)
	trainer.AddLine("one more line")
	model, err := trainer.Compile()

Pairs are only counted within a line. The default smoothing overwrites the
pseudocount floor with the observed count; pass
subcrack.TrainerSmoothing(subcrack.SmoothingAdditive) to add it instead.

Save/load the model:

	bts, err := model.MarshalBinary()
	var load subcrack.Model
	err := load.UnmarshalBinary(bts)

Encrypt something with a random key:

	ciphertext := subcrack.Encrypt(subcrack.NewRand(seed), "Hello, World!")

Break it:

	breaker, err := subcrack.NewBreaker(model)
	opts := subcrack.DefaultSearchOptions()
	opts.Seed = 42
	opts.Reporter = func(p subcrack.Progress) { fmt.Println(p.Iteration, p.Sample) }
	res, err := breaker.Decrypt(ctx, ciphertext, opts)

The same seed, model and ciphertext always produce the same result. Set
opts.Chains to run several independent chains concurrently and keep the
best.

*/
package subcrack
