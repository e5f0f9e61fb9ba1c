// Package commands defines the placectl cobra command tree.
package commands
