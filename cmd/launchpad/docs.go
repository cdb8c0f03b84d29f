package main

// General API documentation for swaggo. Run `make swagger-gen` to generate docs.
//
// @title           launchpad API
// @version         1.0
// @description     HTTP gateway for browsing a model catalog and launching instances.
//
// @contact.name   launchpad maintainers
// @contact.url    https://github.com/your-org/launchpad
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
