package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCommand(t *testing.T) {
	parser := NewCommandParser()

	tests := []struct {
		name      string
		text      string
		wantCmd   string
		wantArgs  []string
		isCommand bool
	}{
		{
			name:      "команда с восклицательным знаком",
			text:      "!привычки",
			wantCmd:   "привычки",
			isCommand: true,
		},
		{
			name:      "команда с точкой",
			text:      ".баланс",
			wantCmd:   "баланс",
			isCommand: true,
		},
		{
			name:      "команда со слешем",
			text:      "/start",
			wantCmd:   "start",
			isCommand: true,
		},
		{
			name:      "аргументы разбиваются по пробелам",
			text:      "!готово зарядка 2026-08-30",
			wantCmd:   "готово",
			wantArgs:  []string{"зарядка", "2026-08-30"},
			isCommand: true,
		},
		{
			name:      "регистр команды приводится к нижнему",
			text:      "!ПрИвЫчКи",
			wantCmd:   "привычки",
			isCommand: true,
		},
		{
			name:      "пробелы вокруг обрезаются",
			text:      "  !стрик зарядка  ",
			wantCmd:   "стрик",
			wantArgs:  []string{"зарядка"},
			isCommand: true,
		},
		{
			name:      "обычный текст — не команда",
			text:      "привет, бот",
			isCommand: false,
		},
		{
			name:      "один только префикс — не команда",
			text:      "!",
			isCommand: false,
		},
		{
			name:      "пустая строка",
			text:      "",
			isCommand: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, args, isCommand := parser.ParseCommand(tt.text)
			assert.Equal(t, tt.isCommand, isCommand)
			assert.Equal(t, tt.wantCmd, cmd)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}
