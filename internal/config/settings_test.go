package config

import (
	"context"
	"errors"
	"slices"

	"github.com/go-logr/logr"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/declarr/declarr/internal/api"
	"github.com/declarr/declarr/internal/remotemap"
)

func ptr[T any](v T) *T { return &v }

func newznabSchema() api.Resource {
	return api.Resource{
		"implementation":          "Newznab",
		"configContract":          "NewznabSettings",
		"enableRss":               true,
		"enableAutomaticSearch":   true,
		"enableInteractiveSearch": true,
		"priority":                float64(25),
		"tags":                    []any{},
		"fields": []any{
			map[string]any{"name": "baseUrl", "value": ""},
			map[string]any{"name": "apiPath", "value": "/api"},
			map[string]any{"name": "apiKey", "value": ""},
			map[string]any{"name": "categories", "value": []any{}},
			map[string]any{"name": "animeCategories", "value": []any{}},
		},
	}
}

func transmissionSchema() api.Resource {
	return api.Resource{
		"implementation": "Transmission",
		"configContract": "TransmissionSettings",
		"enable":         true,
		"priority":       float64(1),
		"tags":           []any{},
		"fields": []any{
			map[string]any{"name": "host", "value": ""},
			map[string]any{"name": "port", "value": float64(9091)},
			map[string]any{"name": "useSsl", "value": false},
			map[string]any{"name": "urlBase", "value": "/transmission/"},
			map[string]any{"name": "username", "value": ""},
			map[string]any{"name": "password", "value": ""},
			map[string]any{"name": "tvCategory", "value": ""},
			map[string]any{"name": "tvDirectory", "value": ""},
		},
	}
}

func fieldValue(r api.Resource, name string) any {
	values := remotemap.FieldValues(remotemap.FieldsFromAttr(r["fields"]))
	return values[name]
}

func reconcileOnce(f *fakeAPI, settings Settings) (bool, error) {
	run := &Run{Log: logr.Discard(), API: f}
	remote, err := FetchRemote(context.Background(), run)
	if err != nil {
		return false, err
	}
	return settings.UpdateRemote(context.Background(), run, remote)
}

func deleteOnce(f *fakeAPI, settings Settings) (bool, error) {
	run := &Run{Log: logr.Discard(), API: f}
	remote, err := FetchRemote(context.Background(), run)
	if err != nil {
		return false, err
	}
	return settings.DeleteRemote(context.Background(), run, remote)
}

var _ = Describe("Settings orchestrator", func() {
	Context("with a tag-referencing indexer", func() {
		var (
			f        *fakeAPI
			settings Settings
		)

		BeforeEach(func() {
			f = newFakeAPI()
			f.indexerSchemas = []api.Resource{newznabSchema()}
			settings = Settings{
				Tags: TagsSettings{Definitions: []string{"anime"}},
				Indexers: IndexersSettings{
					Definitions: map[string]Indexer{
						"nzb": {
							Type:                  "newznab",
							EnableRSS:             true,
							EnableAutomaticSearch: true,
							BaseURL:               "https://nzb.example.com",
							Categories:            []string{"TV/HD"},
							Tags:                  []string{"anime"},
						},
					},
				},
			}
		})

		It("creates the tag before the indexer that references it", func() {
			changed, err := reconcileOnce(f, settings)
			Expect(err).NotTo(HaveOccurred())
			Expect(changed).To(BeTrue())

			tagCreate := slices.Index(f.calls, "tag.create")
			indexerCreate := slices.Index(f.calls, "indexer.create")
			Expect(tagCreate).To(BeNumerically(">=", 0))
			Expect(indexerCreate).To(BeNumerically(">", tagCreate))
		})

		It("resolves tag labels and category names on the created indexer", func() {
			_, err := reconcileOnce(f, settings)
			Expect(err).NotTo(HaveOccurred())

			created := f.indexers.byName("nzb")
			Expect(created).NotTo(BeNil())
			Expect(created.Implementation()).To(Equal("Newznab"))
			Expect(created["tags"]).To(Equal([]int{1}))
			Expect(fieldValue(created, "baseUrl")).To(Equal("https://nzb.example.com"))
			Expect(fieldValue(created, "categories")).To(Equal([]int{5040}))
			// Unmanaged fields keep their schema defaults.
			Expect(fieldValue(created, "apiPath")).To(Equal("/api"))
		})

		It("is idempotent on the second pass", func() {
			_, err := reconcileOnce(f, settings)
			Expect(err).NotTo(HaveOccurred())

			changed, err := reconcileOnce(f, settings)
			Expect(err).NotTo(HaveOccurred())
			Expect(changed).To(BeFalse())
		})

		It("walks the full diff on a dry run without mutating", func() {
			run := &Run{Log: logr.Discard(), API: DryRun(logr.Discard(), f)}
			remote, err := FetchRemote(context.Background(), run)
			Expect(err).NotTo(HaveOccurred())

			changed, err := settings.UpdateRemote(context.Background(), run, remote)
			Expect(err).NotTo(HaveOccurred())
			Expect(changed).To(BeTrue())

			// The suppressed tag create must not stop the indexer section
			// from resolving the tag reference.
			Expect(f.calls).To(BeEmpty())
			Expect(f.tags.resources).To(BeEmpty())
			Expect(f.indexers.resources).To(BeEmpty())
		})

		It("fails on an undeclared tag reference", func() {
			settings.Tags.Definitions = nil
			_, err := reconcileOnce(f, settings)
			Expect(err).To(MatchError(ContainSubstring(`tag "anime" does not exist`)))
		})
	})

	Context("download clients", func() {
		It("creates a transmission client with its settings fields", func() {
			f := newFakeAPI()
			f.downloadClientSchemas = []api.Resource{transmissionSchema()}
			settings := Settings{
				DownloadClients: DownloadClientsSettings{
					Definitions: map[string]DownloadClient{
						"transmission": {
							Type:     "transmission",
							Enable:   true,
							Host:     "transmission",
							Port:     9091,
							Category: ptr("sonarr"),
						},
					},
				},
			}

			changed, err := reconcileOnce(f, settings)
			Expect(err).NotTo(HaveOccurred())
			Expect(changed).To(BeTrue())

			created := f.downloadClients.byName("transmission")
			Expect(created).NotTo(BeNil())
			Expect(created.Implementation()).To(Equal("Transmission"))
			Expect(fieldValue(created, "host")).To(Equal("transmission"))
			Expect(fieldValue(created, "tvCategory")).To(HaveValue(Equal("sonarr")))
			// url_base was not declared, so the schema default survives.
			Expect(fieldValue(created, "urlBase")).To(Equal("/transmission/"))
		})

		It("rejects an unsupported client type", func() {
			f := newFakeAPI()
			settings := Settings{
				DownloadClients: DownloadClientsSettings{
					Definitions: map[string]DownloadClient{
						"weird": {Type: "ftp", Host: "x", Port: 1},
					},
				},
			}

			_, err := reconcileOnce(f, settings)
			var unsupported *remotemap.ConfigUnsupportedError
			Expect(errors.As(err, &unsupported)).To(BeTrue(), "expected ConfigUnsupportedError, got %v", err)
			Expect(unsupported.Implementation).To(Equal("ftp"))
		})
	})

	Context("quality definitions", func() {
		var f *fakeAPI

		BeforeEach(func() {
			f = newFakeAPI()
			f.qualityDefs.resources = []api.Resource{{
				"id":      float64(5),
				"quality": map[string]any{"id": float64(5), "name": "HDTV-720p"},
				"title":   "HDTV-720p",
				"minSize": 17.1,
				"maxSize": float64(400),
			}}
		})

		It("treats values equal at the stored precision as unchanged", func() {
			settings := Settings{Quality: QualitySettings{
				Definitions: map[string]QualityDefinition{
					"HDTV-720p": {Min: 17.14, Max: ptr(float64(400))},
				},
			}}

			changed, err := reconcileOnce(f, settings)
			Expect(err).NotTo(HaveOccurred())
			Expect(changed).To(BeFalse())
			Expect(f.calls).To(BeEmpty())
		})

		It("updates a drifted size window in place", func() {
			settings := Settings{Quality: QualitySettings{
				Definitions: map[string]QualityDefinition{
					"HDTV-720p": {Min: 20, Max: ptr(float64(400))},
				},
			}}

			changed, err := reconcileOnce(f, settings)
			Expect(err).NotTo(HaveOccurred())
			Expect(changed).To(BeTrue())
			Expect(f.calls).To(ContainElement("quality_definition.update"))
			Expect(f.qualityDefs.resources[0]["minSize"]).To(BeEquivalentTo(20))
		})

		It("fails on an unknown quality name", func() {
			settings := Settings{Quality: QualitySettings{
				Definitions: map[string]QualityDefinition{
					"NoSuch-1080p": {Min: 1},
				},
			}}

			_, err := reconcileOnce(f, settings)
			var configErr *remotemap.ConfigError
			Expect(errors.As(err, &configErr)).To(BeTrue(), "expected ConfigError, got %v", err)
		})
	})

	Context("deleting unmanaged resources", func() {
		var (
			f        *fakeAPI
			settings Settings
		)

		BeforeEach(func() {
			f = newFakeAPI()
			stale := newznabSchema().Clone()
			stale["id"] = float64(9)
			stale["name"] = "stale"
			f.indexers.resources = []api.Resource{stale}
		})

		It("leaves unmanaged indexers alone by default", func() {
			changed, err := deleteOnce(f, settings)
			Expect(err).NotTo(HaveOccurred())
			Expect(changed).To(BeFalse())
			Expect(f.indexers.resources).To(HaveLen(1))
		})

		It("removes unmanaged indexers when opted in", func() {
			settings.Indexers.DeleteUnmanaged = true

			changed, err := deleteOnce(f, settings)
			Expect(err).NotTo(HaveOccurred())
			Expect(changed).To(BeTrue())
			Expect(f.indexers.resources).To(BeEmpty())
		})

		It("removes unmanaged indexers of unsupported implementations", func() {
			torznab := api.Resource{
				"id":             float64(11),
				"name":           "torrents",
				"implementation": "Torznab",
			}
			f.indexers.resources = append(f.indexers.resources, torznab)
			settings.Indexers.DeleteUnmanaged = true

			changed, err := deleteOnce(f, settings)
			Expect(err).NotTo(HaveOccurred())
			Expect(changed).To(BeTrue())
			Expect(f.indexers.resources).To(BeEmpty())
		})
	})

	Context("media management", func() {
		It("only pushes the options the config declares", func() {
			f := newFakeAPI()
			f.mediaManagement.resource = api.Resource{
				"id":                       float64(1),
				"copyUsingHardlinks":       false,
				"importExtraFiles":         true,
				"createEmptySeriesFolders": false,
			}
			settings := Settings{MediaManagement: MediaManagementSettings{
				UseHardlinks: ptr(true),
			}}

			changed, err := reconcileOnce(f, settings)
			Expect(err).NotTo(HaveOccurred())
			Expect(changed).To(BeTrue())
			Expect(f.calls).To(Equal([]string{"media_management.update"}))

			updated := f.mediaManagement.resource
			Expect(*(updated["copyUsingHardlinks"].(*bool))).To(BeTrue())
			// Undeclared options pass through untouched.
			Expect(updated["importExtraFiles"]).To(Equal(true))
		})
	})
})
