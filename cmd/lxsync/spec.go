package main

import (
	"time"

	"github.com/alexisbeaulieu97/lxsync/internal/config"
	"github.com/alexisbeaulieu97/lxsync/internal/reconcile"
)

// specFromDocument projects the parsed spec file onto the reconciler's
// immutable input. Nil-ness of optional attributes is preserved: it carries
// the declared-versus-absent distinction the differ relies on.
func specFromDocument(doc *config.Document) reconcile.Spec {
	return reconcile.Spec{
		Name:         doc.Name,
		Architecture: doc.Architecture,
		Config:       doc.Config,
		Devices:      doc.Devices,
		Ephemeral:    doc.Ephemeral,
		Profiles:     doc.Profiles,
		Source:       doc.Source,
		Type:         doc.Type,
		Target:       doc.Target,

		State:            reconcile.DesiredState(doc.State),
		Timeout:          time.Duration(doc.Timeout) * time.Second,
		WaitForAddresses: doc.WaitForIPv4Addresses,
		ForceStop:        doc.ForceStop,
		TrustPassword:    doc.Server.TrustPassword,
	}
}
