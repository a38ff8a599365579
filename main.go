package main

import (
	"github.com/hashicorp/terraform-plugin-sdk/v2/plugin"

	dlfmwrk "github.com/raywall/terraform-provider-dlfmwrk/provider"
)

func main() {
	plugin.Serve(&plugin.ServeOpts{
		ProviderFunc: dlfmwrk.Provider,
	})
}
