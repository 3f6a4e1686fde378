package fx

import (
	"github.com/orgball2608/v2ex-feed-telegram-bot/internal/repositories/post"
	"go.uber.org/fx"
)

var Module = fx.Options(
	post.Module,
)
