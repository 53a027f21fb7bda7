package dialog

// User-facing prompts. Replies are emitted in English; inbound parsing
// accepts both supported languages.
const (
	msgUseStart = "No active conversation. Send /start to log a meal, or \"login <user> <password>\" to sign in."
	msgNotAuthed = "You are not signed in. Send \"login <user> <password>\" first."
	msgPleaseWait = "Still working on your previous message, one moment."
	msgExpired    = "Your previous conversation expired, so I discarded it. Send /start to begin again."
	msgGreeting   = "What did you eat? Describe the meal in one message."
	msgCanceled   = "Canceled. Send /start whenever you want to log a meal."
	msgLoginOK    = "Signed in. Send /start to log a meal."
	msgLoggedOut  = "Signed out. Send \"login <user> <password>\" to sign in again."
	msgLoginFail  = "Sign-in failed, please check your credentials and try again."
	msgRetry      = "Sorry, I could not understand that description. Could you rephrase it?"
	msgAskAgain   = "I could not match that answer to the open questions. Please answer again."
	msgCommitFail = "Saving to your diary failed. Your entries are kept; send /save to retry."
	msgCommitOK   = "Logged! Your meal has been saved to the diary."
	msgNothingToSave = "There is nothing ready to save yet."
	msgNoTranscript  = "There is no stored transcript to continue from."
	msgSearchPrompt  = "What food should I search for?"
	msgNoResults     = "I found nothing for that query. Try different wording."
	msgPickNumber    = "Please reply with one of the listed numbers."
	msgPrefMenu      = "Preferences:\n1. Add a shortcut (your word for a food)\n2. Delete a shortcut\n3. Delete a saved answer\n4. Cancel"
	msgAliasTerm     = "Which word or phrase should I learn?"
	msgNoAliases     = "You have no shortcuts saved."
	msgNoPreferences = "You have no saved answers."
	msgMemoryDone    = "Got it."
	msgSorry         = "Something went wrong on my side. Please try that again."
)
