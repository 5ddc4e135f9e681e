package thread

// LLM prompt templates: data only, no logic.

// singlePassPrompt builds a whole thread from the full transcript.
// Args: persona directive, tweet count, transcript.
const singlePassPrompt = `You are a top-tier content strategist known for writing highly engaging and informative Twitter threads.

Audience style: %s
Adjust the tone, vocabulary and examples to match this audience.

Given the transcript of a YouTube video, write a Twitter thread:
1. Start with a powerful one-line hook.
2. Follow with a chain of %s concise tweets, each expanding on a key insight from the video.
3. Use emojis, emphasis and cliffhangers where they fit the audience.
4. End with a closing tweet that summarizes the value or gives a call to action.

Output ONLY the numbered tweets, one per line, formatted "1. ...", "2. ...". No preamble.

Transcript:
%s`

// chunkPrompt builds a few tweets from one transcript chunk.
// Args: context note, tweet count, chunk text.
const chunkPrompt = `You are a top-tier content strategist writing part of a Twitter thread about a YouTube video.

Context: %s

Write %s concise, engaging tweets covering the key insights of this part of the transcript only.
Do not repeat an introduction unless this is the beginning of the transcript.

Output ONLY the numbered tweets, one per line, formatted "1. ...", "2. ...". No preamble.

Transcript part:
%s`
