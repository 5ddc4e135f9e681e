package thread

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/anatolykoptev/go_thread/internal/engine"
	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  []string
	}{
		{
			name:  "preamble dropped",
			reply: "Here is your thread:\n1. Go makes concurrency feel simple\n2. Channels connect goroutines without locks",
			want:  []string{"1. Go makes concurrency feel simple", "2. Channels connect goroutines without locks"},
		},
		{
			name:  "fragments filtered",
			reply: "1. Too short here\n2. exactly four words here\n3. this one has five words\n4. 🔥",
			want:  []string{"1. this one has five words"},
		},
		{
			name:  "duplicates modulo case and punctuation",
			reply: "1. Go makes concurrency simple and fun!\n2. go makes concurrency simple, and fun\n3. Interfaces are satisfied implicitly in Go",
			want:  []string{"1. Go makes concurrency simple and fun!", "2. Interfaces are satisfied implicitly in Go"},
		},
		{
			name:  "distinct cyrillic posts kept",
			reply: "1. Привет мир это первый пост сегодня\n2. Горутины делают параллелизм очень простым\n3. Каналы соединяют горутины без всяких блокировок",
			want: []string{
				"1. Привет мир это первый пост сегодня",
				"2. Горутины делают параллелизм очень простым",
				"3. Каналы соединяют горутины без всяких блокировок",
			},
		},
		{
			name:  "cyrillic duplicates modulo case and punctuation",
			reply: "1. Привет мир это первый пост сегодня!\n2. привет, мир это первый пост сегодня",
			want:  []string{"1. Привет мир это первый пост сегодня!"},
		},
		{
			name:  "paren markers and blank lines",
			reply: "1) First post about the runtime scheduler\n\n   2) Second post about the garbage collector",
			want:  []string{"1. First post about the runtime scheduler", "2. Second post about the garbage collector"},
		},
		{
			name:  "multi-line post stays together",
			reply: "1. A post that continues\non the next line here",
			want:  []string{"1. A post that continues\non the next line here"},
		},
		{
			name:  "no markers",
			reply: "Just prose with no numbering at all.",
			want:  []string{},
		},
		{
			name:  "empty",
			reply: "",
			want:  []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.reply))
		})
	}
}

func TestNormalizeCap(t *testing.T) {
	var b strings.Builder
	for i := 1; i <= 15; i++ {
		fmt.Fprintf(&b, "%d. Post number %d has plenty of words\n", i, i)
	}
	posts := Normalize(b.String())
	assert.Len(t, posts, MaxPosts)
	for i, p := range posts {
		assert.True(t, strings.HasPrefix(p, fmt.Sprintf("%d. Post number %d ", i+1, i+1)), p)
	}
}

func TestNormalizeIsStable(t *testing.T) {
	reply := "Intro\n3. Third item has enough words\n7. Seventh item has enough words too"
	once := NormalizeText(reply)
	assert.Equal(t, "1. Third item has enough words\n\n2. Seventh item has enough words too", once)
	assert.Equal(t, once, NormalizeText(once))
}

func TestRender(t *testing.T) {
	th := Thread{Posts: []string{"1. First post here with words", "2. Second post here with words"}}
	assert.Equal(t,
		"🧵 Generated Twitter Thread:\n\n1. First post here with words\n\n2. Second post here with words",
		Render(th, nil))

	assert.Equal(t, Banner+"\n\n", Render(Thread{}, nil))

	err := engine.NewFetchError(engine.ErrTranscriptsDisabled)
	assert.Equal(t, "❌ Transcripts are disabled for this video.", Render(th, err))
	assert.True(t, engine.IsErrorMessage(Render(Thread{}, errors.New("x"))))
}
