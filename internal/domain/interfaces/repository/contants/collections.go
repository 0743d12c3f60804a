package repocontants

const (
	SUBSCRIBER_COLLECTION = "subscribers"
	ATTACHMENT_COLLECTION = "attachments"
)
