package app

import (
	"github.com/vk/expgridgo/internal/registry"
	"github.com/vk/expgridgo/modules/env_vars"
	"github.com/vk/expgridgo/modules/print"
	"github.com/vk/expgridgo/modules/socketio"
	"github.com/vk/expgridgo/modules/webhook"
)

// coreModules is the default set of hook modules compiled into the binary.
var coreModules = []registry.Module{
	&print.Module{},
	&webhook.Module{},
	&env_vars.Module{},
	&socketio.Module{},
}
