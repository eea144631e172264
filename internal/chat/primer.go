package chat

// systemPrimer seeds every new conversation. It describes the assistant's
// capabilities and the confirmation policy; the per-turn tool prospectus
// is appended at inference time so the primer stays stable in history.
const systemPrimer = "You are a helpful AI assistant with access to various tools. " +
	"You can browse the web, read and write files, and execute system commands. " +
	"Always ask for confirmation before performing potentially dangerous operations."
