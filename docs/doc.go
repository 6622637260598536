// Package docs provides generated OpenAPI documentation.
//
// promptdice API
//
//	@title			promptdice API
//	@version		1.0
//	@description	Roll random prompts from editable category dice, browse history and fetch stateless fills.
//
//	@contact.name	API Support
//	@contact.url	https://github.com/jackzampolin/promptdice
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host		localhost:8080
//	@BasePath	/
//
//	@schemes	http https
package docs

//go:generate swag init -g ../cmd/promptdice/serve.go -o ./swagger --outputTypes go --parseDependency --parseInternal
